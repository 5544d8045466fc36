package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

var ErrPrivateDestination = errors.New("destination resolves to private/reserved address")

var privateNets = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"100.64.0.0/10",
	"169.254.0.0/16",
	"0.0.0.0/8",
	"fc00::/7",
	"fe80::/10",
)

// IsPrivateIP returns true if the IP is in a private, link-local or reserved range.
// Loopback addresses are not counted; CheckEndpoint always lets them through.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// CheckEndpoint rejects feed endpoints whose host is, or resolves to, a
// private or reserved address. Loopback is always allowed. Lookup failures are
// left for the HTTP client to report.
func CheckEndpoint(ctx context.Context, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	host := u.Hostname()
	if host == "" {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		return checkIP(ip)
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if err := checkIP(a.IP); err != nil {
			return err
		}
	}
	return nil
}

func checkIP(ip net.IP) error {
	if ip.IsLoopback() {
		return nil
	}
	if IsPrivateIP(ip) {
		return fmt.Errorf("%w: %s", ErrPrivateDestination, ip)
	}
	return nil
}

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}
