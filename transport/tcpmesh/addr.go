package tcpmesh

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// FormatAddr renders a bound TCP endpoint as a multiaddr-style string,
// e.g. "/ip4/127.0.0.1/tcp/4242".
func FormatAddr(ip net.IP, port int) string {
	if v4 := ip.To4(); v4 != nil {
		return fmt.Sprintf("/ip4/%s/tcp/%d", v4.String(), port)
	}
	return fmt.Sprintf("/ip6/%s/tcp/%d", ip.String(), port)
}

// ParseAddr extracts a host:port dial target from a multiaddr-style string.
// A trailing "/p2p/<peer-id>" component is accepted and ignored; the mesh has
// no authenticated identities to check it against.
func ParseAddr(addr string) (string, error) {
	s := strings.TrimSpace(addr)
	if s == "" || !strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("bad address %q", addr)
	}
	parts := strings.Split(strings.TrimPrefix(s, "/"), "/")
	if len(parts) < 4 {
		return "", fmt.Errorf("bad address %q", addr)
	}
	proto, host, tp, portStr := parts[0], parts[1], parts[2], parts[3]
	if proto != "ip4" && proto != "ip6" && proto != "dns4" && proto != "dns6" {
		return "", fmt.Errorf("unsupported protocol %q in %q", proto, addr)
	}
	if tp != "tcp" {
		return "", fmt.Errorf("unsupported transport %q in %q", tp, addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("bad port %q in %q", portStr, addr)
	}
	if len(parts) > 4 && parts[4] != "p2p" {
		return "", fmt.Errorf("unexpected component %q in %q", parts[4], addr)
	}
	return net.JoinHostPort(host, portStr), nil
}
