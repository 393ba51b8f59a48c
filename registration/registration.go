// Package registration estimates a domain's age from registry data and turns
// young registrations into risk points.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"scamscan-engine/config"
)

// ErrNotConfigured is returned by a source that cannot run without
// credentials. It is skipped silently.
var ErrNotConfigured = errors.New("source not configured")

// Record is what one source knows about a domain.
type Record struct {
	Created   *time.Time
	Updated   *time.Time
	Expires   *time.Time
	Registrar string
}

// Source is one registry data provider.
type Source interface {
	Name() string
	Fetch(ctx context.Context, domain string) (Record, error)
}

// Info is the registration assessment of a domain.
type Info struct {
	Domain    string     `json:"domain"`
	AgeDays   *int       `json:"ageDays"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Registrar string     `json:"registrar,omitempty"`
	Source    string     `json:"source"`
	RiskScore int        `json:"riskScore"`
	Warnings  []string   `json:"warnings"`
	Error     string     `json:"error,omitempty"`
}

const ageUnknownWarning = "Domain age unknown (WHOIS/RDAP did not return creation date)."

// ageBands are checked in order; the first band the age falls below wins.
var ageBands = []struct {
	below   int
	score   int
	warning string
}{
	{7, 60, "VERY NEW DOMAIN (%d days old). High scam risk."},
	{30, 25, "Young domain (%d days old)."},
	{90, 10, "Relatively new domain (%d days old)."},
}

// Provider error texts that say nothing about the domain itself.
var quotaMarkers = []string{"quota exceeded", "monthly quota", "limit exceeded"}

// Lookup queries sources in order until one yields a creation date.
type Lookup struct {
	sources []Source
	now     func() time.Time
}

// New builds the default chain: RDAP, port-43 WHOIS, then API Ninjas.
func New(cfg config.Config) *Lookup {
	return NewLookup(
		NewRDAP(cfg.RDAPBaseURL),
		NewWhois(10*time.Second),
		NewAPINinjas(cfg.APINinjasURL, cfg.APINinjasKey),
	)
}

func NewLookup(sources ...Source) *Lookup {
	return &Lookup{sources: sources, now: time.Now}
}

// Lookup never fails; problems are reported through Error and Warnings.
func (l *Lookup) Lookup(ctx context.Context, raw string) Info {
	domain := RegistrableDomain(raw)
	info := Info{Domain: domain, Warnings: []string{}}
	if domain == "" {
		info.Source = "aggregated"
		info.Error = "invalid_domain"
		l.assess(&info)
		return info
	}

	var (
		merged   Record
		firstErr string
	)
	for _, s := range l.sources {
		rec, err := s.Fetch(ctx, domain)
		if errors.Is(err, ErrNotConfigured) {
			continue
		}
		if err != nil {
			log.Printf("[Whois] %s lookup for %s failed: %v", s.Name(), domain, err)
			if firstErr == "" {
				firstErr = err.Error()
			}
			continue
		}
		if age := l.ageDays(rec.Created); age != nil {
			info.Source = s.Name()
			info.fill(rec)
			info.AgeDays = age
			l.assess(&info)
			return info
		}
		merged.mergeFrom(rec)
	}

	info.Source = "aggregated"
	info.fill(merged)
	info.Error = firstErr
	if info.Error == "" {
		info.Error = "whois_all_failed"
	}
	l.assess(&info)
	return info
}

func (i *Info) fill(r Record) {
	i.CreatedAt = r.Created
	i.UpdatedAt = r.Updated
	i.ExpiresAt = r.Expires
	i.Registrar = r.Registrar
}

func (r *Record) mergeFrom(o Record) {
	if r.Created == nil {
		r.Created = o.Created
	}
	if r.Updated == nil {
		r.Updated = o.Updated
	}
	if r.Expires == nil {
		r.Expires = o.Expires
	}
	if r.Registrar == "" {
		r.Registrar = o.Registrar
	}
}

// ageDays is whole days since created; nil for a missing or future date.
func (l *Lookup) ageDays(created *time.Time) *int {
	if created == nil {
		return nil
	}
	diff := l.now().Sub(*created)
	if diff <= 0 {
		return nil
	}
	days := int(diff.Hours() / 24)
	return &days
}

func (l *Lookup) assess(info *Info) {
	if info.Error != "" && !isQuotaError(info.Error) {
		info.Warnings = append(info.Warnings,
			fmt.Sprintf("WHOIS lookup had issues (source=%s): %s", info.Source, info.Error))
	}

	if info.AgeDays == nil {
		info.Warnings = append(info.Warnings, ageUnknownWarning)
		return
	}
	for _, b := range ageBands {
		if *info.AgeDays < b.below {
			info.RiskScore += b.score
			info.Warnings = append(info.Warnings, fmt.Sprintf(b.warning, *info.AgeDays))
			return
		}
	}
}

func isQuotaError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range quotaMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// RegistrableDomain reduces a URL or host name to the domain a registry
// knows about, e.g. "https://app.example.co.uk/x" -> "example.co.uk".
// IP literals and hosts without a public suffix are returned as is.
func RegistrableDomain(raw string) string {
	host := Host(raw)
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// Host extracts the lower-cased host name from a URL or bare host.
func Host(raw string) string {
	v := strings.TrimSpace(raw)
	if i := strings.Index(v, "://"); i >= 0 {
		v = v[i+3:]
	}
	if i := strings.IndexAny(v, "/?#"); i >= 0 {
		v = v[:i]
	}
	if i := strings.LastIndex(v, "@"); i >= 0 {
		v = v[i+1:]
	}
	if h, _, err := net.SplitHostPort(v); err == nil {
		v = h
	}
	return strings.TrimSuffix(strings.ToLower(v), ".")
}
