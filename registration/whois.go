package registration

import (
	"context"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"
)

// Whois queries registry WHOIS servers over port 43.
type Whois struct {
	query func(domain string) (string, error)
}

func NewWhois(timeout time.Duration) *Whois {
	c := whois.NewClient().SetTimeout(timeout)
	return &Whois{query: func(d string) (string, error) { return c.Whois(d) }}
}

func (w *Whois) Name() string { return "whois" }

type whoisResult struct {
	rec Record
	err error
}

// Fetch runs the blocking WHOIS query in the background so ctx is honoured.
func (w *Whois) Fetch(ctx context.Context, domain string) (Record, error) {
	done := make(chan whoisResult, 1)
	go func() {
		rec, err := w.lookup(domain)
		done <- whoisResult{rec, err}
	}()

	select {
	case <-ctx.Done():
		return Record{}, ctx.Err()
	case r := <-done:
		return r.rec, r.err
	}
}

// lookup retries with the parent domain when the response has no parseable
// domain block, e.g. for delegated subdomains. It never climbs above the
// registrable domain, so a public suffix such as co.uk is never queried.
func (w *Whois) lookup(domain string) (Record, error) {
	raw, err := w.query(domain)
	if err != nil {
		return Record{}, err
	}

	p, err := parser.Parse(raw)
	if err != nil || p.Domain == nil {
		if parent, ok := parentDomain(domain); ok {
			return w.lookup(parent)
		}
		if err == nil {
			err = parser.ErrNotFoundDomain
		}
		return Record{}, err
	}

	rec := Record{
		Created: datePtr(p.Domain.CreatedDate),
		Updated: datePtr(p.Domain.UpdatedDate),
		Expires: datePtr(p.Domain.ExpirationDate),
	}
	if p.Registrar != nil {
		rec.Registrar = p.Registrar.Name
	}
	return rec, nil
}

func parentDomain(domain string) (string, bool) {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil || registrable == domain {
		return "", false
	}
	_, parent, _ := strings.Cut(domain, ".")
	return parent, parent != ""
}
