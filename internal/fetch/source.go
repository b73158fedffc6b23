package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ReadSource returns the contents of a data source location.
// A location is an http(s) URL, a file:// URL, or a plain filesystem path.
func ReadSource(ctx context.Context, location string, opts *Options) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, &Error{URL: location, Message: "empty source location"}
	}

	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		result, err := URL(ctx, location, opts)
		if err != nil {
			return nil, err
		}
		return result.Body, nil
	case strings.HasPrefix(lower, "file://"):
		parsed, err := url.Parse(location)
		if err != nil {
			return nil, &Error{URL: location, Message: "invalid file URL", Cause: err}
		}
		path := parsed.Path
		if parsed.Host != "" && parsed.Host != "localhost" {
			path = parsed.Host + path
		}
		return readFile(location, path)
	default:
		return readFile(location, location)
	}
}

func readFile(location, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{URL: location, Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	return data, nil
}
