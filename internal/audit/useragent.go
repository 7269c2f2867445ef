package audit

import "strings"

// DeviceInfo is a coarse classification of the client derived from the
// User-Agent header at write time.
type DeviceInfo struct {
	Kind    string // desktop, mobile, tablet, bot, unknown
	Browser string
	OS      string
}

// String renders the classification for storage, e.g. "mobile/Chrome/Android".
func (d DeviceInfo) String() string {
	if d.Kind == "" {
		return ""
	}
	return d.Kind + "/" + d.Browser + "/" + d.OS
}

// ClassifyUserAgent applies heuristics over the User-Agent string. The
// result is stored alongside the raw header so reclassification never
// rewrites history.
func ClassifyUserAgent(ua string) DeviceInfo {
	if strings.TrimSpace(ua) == "" {
		return DeviceInfo{}
	}
	lower := strings.ToLower(ua)
	info := DeviceInfo{Kind: "desktop", Browser: "Other", OS: "Other"}

	switch {
	case strings.Contains(lower, "bot"), strings.Contains(lower, "crawler"), strings.Contains(lower, "spider"), strings.Contains(lower, "curl"), strings.Contains(lower, "wget"):
		info.Kind = "bot"
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"):
		info.Kind = "tablet"
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "iphone"), strings.Contains(lower, "android"):
		info.Kind = "mobile"
	}

	switch {
	case strings.Contains(lower, "edg/"):
		info.Browser = "Edge"
	case strings.Contains(lower, "opr/"), strings.Contains(lower, "opera"):
		info.Browser = "Opera"
	case strings.Contains(lower, "firefox/"):
		info.Browser = "Firefox"
	case strings.Contains(lower, "chrome/"), strings.Contains(lower, "crios/"):
		info.Browser = "Chrome"
	case strings.Contains(lower, "safari/"):
		info.Browser = "Safari"
	}

	switch {
	case strings.Contains(lower, "android"):
		info.OS = "Android"
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ios"):
		info.OS = "iOS"
	case strings.Contains(lower, "windows"):
		info.OS = "Windows"
	case strings.Contains(lower, "mac os"), strings.Contains(lower, "macintosh"):
		info.OS = "macOS"
	case strings.Contains(lower, "linux"):
		info.OS = "Linux"
	}

	return info
}
