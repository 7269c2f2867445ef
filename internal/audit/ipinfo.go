package audit

import (
	"net"
	"net/netip"
)

// IP scopes reported by ClassifyIP.
const (
	IPScopeLoopback  = "loopback"
	IPScopePrivate   = "private"
	IPScopeLinkLocal = "link-local"
	IPScopeShared    = "shared"
	IPScopePublic    = "public"
	IPScopeInvalid   = "invalid"
)

// IPInfo describes the stored client address. Computed at read time from
// the raw IP so the write path stays cheap and the classification can
// change without rewriting history.
type IPInfo struct {
	Scope    string
	Location string
}

var cgnatRange = netip.MustParsePrefix("100.64.0.0/10")

// ClassifyIP resolves scope and a best-effort location hint for an address
// as captured from the request (host or host:port form).
func ClassifyIP(raw string) IPInfo {
	if raw == "" {
		return IPInfo{Scope: IPScopeInvalid}
	}
	host := raw
	if h, _, err := net.SplitHostPort(raw); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return IPInfo{Scope: IPScopeInvalid}
	}
	addr = addr.Unmap()

	switch {
	case addr.IsLoopback():
		return IPInfo{Scope: IPScopeLoopback, Location: "this host"}
	case addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast():
		return IPInfo{Scope: IPScopeLinkLocal, Location: "local segment"}
	case addr.Is4() && cgnatRange.Contains(addr):
		return IPInfo{Scope: IPScopeShared, Location: "carrier network"}
	case addr.IsPrivate():
		return IPInfo{Scope: IPScopePrivate, Location: "internal network"}
	case !addr.IsGlobalUnicast():
		return IPInfo{Scope: IPScopeInvalid}
	default:
		// Region lookup would slot in here; without a geo database the
		// location stays empty for public addresses.
		return IPInfo{Scope: IPScopePublic}
	}
}
