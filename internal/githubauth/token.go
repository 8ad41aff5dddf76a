package githubauth

import (
	"strings"
)

// Environment variable names consulted, in order, when no token source is configured.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

// DefaultTokenVariables lists the variables of the default token chain in preference order.
func DefaultTokenVariables() []string {
	return []string{EnvGitHubCLIToken, EnvGitHubToken, EnvGitHubAPIToken}
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// MapLookup adapts a parsed dotenv map to an EnvironmentLookup.
func MapLookup(environment map[string]string) EnvironmentLookup {
	return func(key string) (string, bool) {
		value, exists := environment[key]
		return value, exists
	}
}

// LayeredLookup consults each layer in order and returns the first non-blank value, trimmed.
func LayeredLookup(layers ...EnvironmentLookup) EnvironmentLookup {
	return func(key string) (string, bool) {
		for _, layer := range layers {
			if layer == nil {
				continue
			}
			value, exists := layer(key)
			if !exists {
				continue
			}
			if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
				return trimmedValue, true
			}
		}
		return "", false
	}
}

// FirstToken tries every key against a layer before moving to the next layer, so a token
// anywhere in an earlier layer wins over any token in a later one.
func FirstToken(keys []string, layers ...EnvironmentLookup) (string, bool) {
	for _, layer := range layers {
		trimmedLayer := LayeredLookup(layer)
		for _, key := range keys {
			if value, found := trimmedLayer(key); found {
				return value, true
			}
		}
	}
	return "", false
}
