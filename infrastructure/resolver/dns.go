package resolver

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"
)

// Lookup resolves hostnames with a net.Resolver.
type Lookup interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DNS gates switches on hostname resolution. Literal IP addresses pass
// without a lookup.
type DNS struct {
	lookup Lookup
	log    logrus.FieldLogger
}

// NewDNS returns a resolver using the system DNS configuration.
func NewDNS() *DNS {
	return &DNS{lookup: net.DefaultResolver, log: logrus.StandardLogger()}
}

// NewDNSWithLookup returns a resolver backed by lookup.
func NewDNSWithLookup(lookup Lookup) *DNS {
	return &DNS{lookup: lookup, log: logrus.StandardLogger()}
}

// Resolves reports whether host is an IP address or has at least one
// address record.
func (d *DNS) Resolves(ctx context.Context, host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	addrs, err := d.lookup.LookupHost(ctx, host)
	if err != nil {
		d.log.WithField("switch", host).Debugf("lookup failed: %v", err)
		return false
	}
	return len(addrs) > 0
}
