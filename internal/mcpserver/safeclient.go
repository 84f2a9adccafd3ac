package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/erraggy/oasresolve/filesystem"
)

// isBlockedIP returns true if the IP is private, loopback, link-local, or unspecified.
func isBlockedIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

// lookupPublic resolves host and fails if any of its addresses is blocked.
func lookupPublic(ctx context.Context, host string) ([]net.IPAddr, error) {
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no IP addresses found for host: %s", host)
	}
	for _, ipAddr := range ips {
		if isBlockedIP(ipAddr.IP) {
			return nil, fmt.Errorf("blocked request to private/loopback IP: %s (%s)", host, ipAddr.IP)
		}
	}
	return ips, nil
}

// newSafeHTTPClient creates an HTTP client that refuses private, loopback
// and link-local addresses, including on redirects. Documents handed to the
// server can name any URL in a $ref, so remote reads go through this client
// unless OASRESOLVE_ALLOW_PRIVATE_IPS is set.
func newSafeHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	return &http.Client{
		Timeout: filesystem.DefaultHTTPTimeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := lookupPublic(ctx, host)
				if err != nil {
					return nil, err
				}
				// Dial the address that was checked, not a fresh lookup.
				return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].IP.String(), port))
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			_, err := lookupPublic(req.Context(), req.URL.Hostname())
			return err
		},
	}
}

// newFileSystem returns the local file system used by tool calls.
func newFileSystem() *filesystem.Local {
	local := filesystem.NewLocal()
	local.AllowHTTP = cfg.AllowHTTP
	local.MaxFileSize = cfg.MaxFileSize
	if cfg.AllowHTTP && !cfg.AllowPrivateIPs {
		local.HTTPClient = newSafeHTTPClient()
	}
	return local
}
