package http

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPConfig lists the peers allowed to report a client address through
// X-Forwarded-For or X-Real-IP. An empty list trusts nobody.
type IPConfig struct {
	TrustedProxies []netip.Prefix
}

// NewIPConfig parses trusted proxy ranges such as "10.0.0.0/8". A bare
// address is a single-host range. Invalid entries are an error so a typo
// can't silently disable forwarding.
func NewIPConfig(ranges []string) (*IPConfig, error) {
	config := &IPConfig{}
	for _, raw := range ranges {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if prefix, err := netip.ParsePrefix(raw); err == nil {
			config.TrustedProxies = append(config.TrustedProxies, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", raw)
		}
		addr = addr.Unmap()
		config.TrustedProxies = append(config.TrustedProxies, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return config, nil
}

// Trusts reports whether addr falls inside a trusted proxy range
func (c *IPConfig) Trusts(addr netip.Addr) bool {
	if c == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ExtractClientIP returns the address of the client that sent r.
//
// Forwarding headers count only when the direct peer is a trusted proxy.
// X-Forwarded-For is read right to left and the first hop that isn't a
// trusted proxy wins, since anything further left was written by the client
// and can be forged.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	peer := remoteAddr(r)

	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !config.Trusts(peerAddr) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		var leftmost string
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				continue
			}
			hop = hop.Unmap()
			leftmost = hop.String()
			if !config.Trusts(hop) {
				return leftmost
			}
		}
		// every hop was one of ours
		if leftmost != "" {
			return leftmost
		}
	}

	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.Unmap().String()
	}

	return peer
}

// remoteAddr strips the port from RemoteAddr when there is one
func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
