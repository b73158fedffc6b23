package openstates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/fetch"
)

var billLabelPattern = regexp.MustCompile(`(?i)(HB|SB|HR|HCR|SCR)\s*[-_ ]?\s*(\d{1,4})(?:.*?(\d{4}))?`)

// ParseBillLabel extracts a bill code and an optional session year from a
// label such as "HB 1234 (2025)". ok is false when no bill code is present.
func ParseBillLabel(label string) (code, year string, ok bool) {
	m := billLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return "", "", false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]) + strconv.Itoa(n), m[3], true
}

// BillLink is the OpenStates page for a bill. URL is empty when no bill matched.
type BillLink struct {
	Bill string `json:"bill"`
	Year string `json:"year"`
	URL  string `json:"url"`
}

type billItem struct {
	Sources []struct {
		URL string `json:"url"`
	} `json:"sources"`
	Links []struct {
		URL string `json:"url"`
	} `json:"links"`
	OpenStatesURL string `json:"openstates_url"`
}

func (b billItem) bestURL() string {
	for _, s := range b.Sources {
		if s.URL != "" {
			return s.URL
		}
	}
	for _, l := range b.Links {
		if l.URL != "" {
			return l.URL
		}
	}
	return b.OpenStatesURL
}

// BillLink finds the page for bill. A year in the label is used when year is empty.
func (c *Client) BillLink(ctx context.Context, bill, year string) (*BillLink, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	code, labelYear, ok := ParseBillLabel(bill)
	if !ok {
		return &BillLink{Bill: strings.TrimSpace(bill), Year: strings.TrimSpace(year)}, nil
	}
	year = strings.TrimSpace(year)
	if year == "" {
		year = labelYear
	}

	key := code + ":" + year
	if v, ok := c.links.Load(key); ok {
		link := v.(BillLink)
		return &link, nil
	}

	q := url.Values{}
	q.Set("jurisdiction", Jurisdiction)
	q.Set("q", code)
	q.Set("per_page", "3")
	if year != "" {
		q.Set("session", year)
	}
	reqURL := c.baseURL + "/bills?" + q.Encode()

	res, err := fetch.URL(ctx, reqURL, c.options)
	var fe *fetch.Error
	if err != nil && errors.As(err, &fe) && fe.StatusCode >= http.StatusInternalServerError {
		if err := c.sleep(ctx, 500*time.Millisecond); err != nil {
			return nil, err
		}
		res, err = fetch.URL(ctx, reqURL, c.options)
	}
	if err != nil {
		return nil, &UpstreamError{Op: "bill search", Cause: err}
	}

	var body struct {
		Results []billItem `json:"results"`
		Data    []billItem `json:"data"`
	}
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &UpstreamError{Op: "bill search", Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	items := body.Results
	if len(items) == 0 {
		items = body.Data
	}

	link := BillLink{Bill: code, Year: year}
	if len(items) > 0 {
		link.URL = items[0].bestURL()
	}
	c.links.Store(key, link)
	return &link, nil
}
