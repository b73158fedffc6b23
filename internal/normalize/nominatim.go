package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/fetch"
	"github.com/jonathan/nh-rep-finder/internal/types"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimTimeout bounds one geocoder request. Lookups run inside an HTTP handler,
// so the geocoder must answer well within the server's write timeout.
const NominatimTimeout = 10 * time.Second

// NominatimOptions returns fetch options for the request path: a short timeout and
// no 429 retries. A rate-limited geocoder fails the lookup instead of stalling it.
func NominatimOptions() *fetch.Options {
	o := fetch.DefaultOptions()
	o.Timeout = NominatimTimeout
	o.RateLimitRetries = 0
	return o
}

// NominatimNormalizer resolves addresses through a Nominatim search endpoint.
type NominatimNormalizer struct {
	baseURL string
	opts    *fetch.Options
}

// NewNominatimNormalizer creates a normalizer. Nominatim's usage policy asks for a
// contact address in the User-Agent, so email is sent there when set. Nil opts
// means NominatimOptions.
func NewNominatimNormalizer(baseURL, email string, opts *fetch.Options) *NominatimNormalizer {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if opts == nil {
		opts = NominatimOptions()
	}
	o := *opts
	o.Headers = map[string]string{"Accept": "application/json"}
	if email != "" {
		o.UserAgent = fetch.DefaultUserAgent + " (" + email + ")"
	}
	return &NominatimNormalizer{baseURL: strings.TrimRight(baseURL, "/"), opts: &o}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Town         string `json:"town"`
		City         string `json:"city"`
		Village      string `json:"village"`
		Hamlet       string `json:"hamlet"`
		Municipality string `json:"municipality"`
		County       string `json:"county"`
		State        string `json:"state"`
	} `json:"address"`
}

// Name implements Normalizer.
func (n *NominatimNormalizer) Name() string { return "nominatim" }

// Normalize implements Normalizer.
func (n *NominatimNormalizer) Normalize(ctx context.Context, raw string) (*types.NormalizedAddress, error) {
	q := url.Values{}
	q.Set("q", raw)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")
	q.Set("countrycodes", "us")

	result, err := fetch.URL(ctx, n.baseURL+"/search?"+q.Encode(), n.opts)
	if err != nil {
		return nil, err
	}

	var places []nominatimPlace
	if err := json.Unmarshal(result.Body, &places); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(places) == 0 {
		return nil, &UnknownAddressError{Address: raw, Reason: "no geocoder match"}
	}

	p := places[0]
	if !strings.EqualFold(p.Address.State, "New Hampshire") {
		return nil, &UnknownAddressError{Address: raw, Reason: "address is outside New Hampshire"}
	}
	locality := firstNonEmpty(p.Address.Town, p.Address.City, p.Address.Municipality, p.Address.Village, p.Address.Hamlet)
	if locality == "" {
		return nil, &UnknownAddressError{Address: raw, Reason: "geocoder match has no town"}
	}

	return &types.NormalizedAddress{
		FormattedAddress: p.DisplayName,
		Locality:         locality,
		Town:             strings.TrimPrefix(locality, "Town of "),
		County:           strings.TrimSuffix(p.Address.County, " County"),
		Source:           n.Name(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
