package ratelimit

import (
	"strings"
)

// exemptPaths are never limited, whatever the configuration says.
var exemptPaths = map[string]bool{
	"/health":  true,
	"/version": true,
}

var unlimited = &EndpointConfig{}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact matches win over prefix matches. Returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if exemptPaths[path] {
		return unlimited
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && methodMatches(config.Method, method) {
			return config
		}
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if !methodMatches(config.Method, method) || !strings.HasSuffix(config.Path, "/") {
			continue
		}
		if strings.HasPrefix(path, config.Path) && (best == nil || len(config.Path) > len(best.Path)) {
			best = config
		}
	}
	return best
}

func methodMatches(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}
