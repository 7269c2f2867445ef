package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want DeviceInfo
	}{
		{
			name: "windows chrome desktop",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: DeviceInfo{Kind: "desktop", Browser: "Chrome", OS: "Windows"},
		},
		{
			name: "android mobile",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want: DeviceInfo{Kind: "mobile", Browser: "Chrome", OS: "Android"},
		},
		{
			name: "ipad tablet",
			ua:   "Mozilla/5.0 (iPad; CPU OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/604.1",
			want: DeviceInfo{Kind: "tablet", Browser: "Safari", OS: "iOS"},
		},
		{
			name: "mac firefox",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: DeviceInfo{Kind: "desktop", Browser: "Firefox", OS: "macOS"},
		},
		{
			name: "edge before chrome token",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			want: DeviceInfo{Kind: "desktop", Browser: "Edge", OS: "Windows"},
		},
		{
			name: "curl is a bot",
			ua:   "curl/8.4.0",
			want: DeviceInfo{Kind: "bot", Browser: "Other", OS: "Other"},
		},
		{
			name: "crawler",
			ua:   "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want: DeviceInfo{Kind: "bot", Browser: "Other", OS: "Other"},
		},
		{
			name: "empty header",
			ua:   "  ",
			want: DeviceInfo{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyUserAgent(tc.ua))
		})
	}
}

func TestDeviceInfoString(t *testing.T) {
	assert.Equal(t, "mobile/Chrome/Android", DeviceInfo{Kind: "mobile", Browser: "Chrome", OS: "Android"}.String())
	assert.Empty(t, DeviceInfo{}.String())
}
