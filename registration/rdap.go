package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RDAP queries a bootstrap-aware RDAP service such as rdap.org.
type RDAP struct {
	client  *http.Client
	baseURL string
}

func NewRDAP(baseURL string) *RDAP {
	return &RDAP{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (r *RDAP) Name() string { return "rdap" }

type rdapEvent struct {
	Action string `json:"eventAction"`
	Date   any    `json:"eventDate"`
}

type rdapEntity struct {
	Roles      []string `json:"roles"`
	VCardArray []any    `json:"vcardArray"`
}

type rdapDomain struct {
	Events   []rdapEvent  `json:"events"`
	Entities []rdapEntity `json:"entities"`
}

func (r *RDAP) Fetch(ctx context.Context, domain string) (Record, error) {
	u := r.baseURL + "/domain/" + url.PathEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Record{}, err
	}
	req.Header.Set("Accept", "application/rdap+json, application/json;q=0.9, */*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("rdap_error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Record{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var d rdapDomain
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&d); err != nil {
		return Record{}, fmt.Errorf("rdap_error: %w", err)
	}

	return Record{
		Created:   datePtr(d.event("registration", "registered", "creation", "created")),
		Updated:   datePtr(d.event("last changed", "last change", "last update", "update", "updated")),
		Expires:   datePtr(d.event("expiration", "expire", "expiry", "expires")),
		Registrar: d.registrar(),
	}, nil
}

// event returns the date of the first event whose action contains one of names.
func (d rdapDomain) event(names ...string) any {
	for _, e := range d.Events {
		action := strings.ToLower(e.Action)
		for _, n := range names {
			if strings.Contains(action, n) {
				return e.Date
			}
		}
	}
	return nil
}

// registrar reads the "fn" property of the registrar entity's vCard.
func (d rdapDomain) registrar() string {
	for _, ent := range d.Entities {
		isRegistrar := false
		for _, role := range ent.Roles {
			if strings.EqualFold(role, "registrar") {
				isRegistrar = true
			}
		}
		if !isRegistrar || len(ent.VCardArray) < 2 {
			continue
		}
		props, ok := ent.VCardArray[1].([]any)
		if !ok {
			continue
		}
		for _, p := range props {
			fields, ok := p.([]any)
			if !ok || len(fields) < 4 || fields[0] != "fn" {
				continue
			}
			if name, ok := fields[3].(string); ok && name != "" {
				return name
			}
		}
	}
	return ""
}
