package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APINinjas is the commercial WHOIS API at api-ninjas.com.
type APINinjas struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewAPINinjas(baseURL, apiKey string) *APINinjas {
	return &APINinjas{
		client:  &http.Client{Timeout: 7 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (a *APINinjas) Name() string { return "api_ninjas" }

func (a *APINinjas) Fetch(ctx context.Context, domain string) (Record, error) {
	if a.apiKey == "" {
		return Record{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?domain="+url.QueryEscape(domain), nil)
	if err != nil {
		return Record{}, err
	}
	req.Header.Set("X-Api-Key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return Record{}, err
	}
	defer resp.Body.Close()

	var data map[string]any
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&data)

	if resp.StatusCode >= 400 {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if e := firstString(data, "error", "message"); e != "" {
			msg += ": " + e
		}
		return Record{}, fmt.Errorf("%s", msg)
	}
	if decodeErr != nil {
		return Record{}, fmt.Errorf("bad response format: %w", decodeErr)
	}

	return Record{
		Created:   datePtr(firstPresent(data, "creation_date", "created")),
		Updated:   datePtr(firstPresent(data, "updated_date", "updated", "changed")),
		Expires:   datePtr(firstPresent(data, "expiration_date", "expires")),
		Registrar: firstString(data, "registrar_name", "registrar"),
	}, nil
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
