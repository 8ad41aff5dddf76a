package thanks

import (
	"fmt"
	"strings"
	"time"

	"github.com/temirov/thanks/internal/graphql"
)

const (
	defaultProjectDirectoryConstant      = "."
	defaultEcosystemConstant             = "auto"
	defaultEnvironmentFileConstant       = ".env"
	defaultRequestTimeoutConstant        = 30 * time.Second
	httpTransportValueConstant           = "http"
	githubCLITransportValueConstant      = "gh"
	unsupportedTransportTemplateConstant = "unsupported transport %q"
)

// TransportKind selects how GraphQL documents reach GitHub.
type TransportKind string

// Supported transports.
const (
	TransportHTTP      TransportKind = TransportKind(httpTransportValueConstant)
	TransportGitHubCLI TransportKind = TransportKind(githubCLITransportValueConstant)
)

// ParseTransportKind normalizes a transport name; blank selects http.
func ParseTransportKind(transportValue string) (TransportKind, error) {
	switch strings.ToLower(strings.TrimSpace(transportValue)) {
	case "", httpTransportValueConstant:
		return TransportHTTP, nil
	case githubCLITransportValueConstant:
		return TransportGitHubCLI, nil
	default:
		return "", fmt.Errorf(unsupportedTransportTemplateConstant, transportValue)
	}
}

// Configuration stores options for the star command.
type Configuration struct {
	DryRun            bool                          `mapstructure:"dry_run"`
	Project           string                        `mapstructure:"project"`
	Ecosystem         string                        `mapstructure:"ecosystem"`
	Transport         string                        `mapstructure:"transport"`
	Endpoint          string                        `mapstructure:"endpoint"`
	TokenSource       string                        `mapstructure:"token_source"`
	EnvironmentFile   string                        `mapstructure:"env_file"`
	Timeout           time.Duration                 `mapstructure:"timeout"`
	RequestsPerSecond float64                       `mapstructure:"requests_per_second"`
	MainRepositories  map[string]MainRepositoryRule `mapstructure:"main_repositories"`
}

// DefaultConfiguration supplies baseline values for the star command.
func DefaultConfiguration() Configuration {
	return Configuration{
		Project:         defaultProjectDirectoryConstant,
		Ecosystem:       defaultEcosystemConstant,
		Transport:       httpTransportValueConstant,
		Endpoint:        graphql.DefaultEndpoint,
		EnvironmentFile: defaultEnvironmentFileConstant,
		Timeout:         defaultRequestTimeoutConstant,
	}
}

// DefaultConfigurationValues returns viper defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".dry_run":             defaults.DryRun,
		configurationKeyPrefix + ".project":             defaults.Project,
		configurationKeyPrefix + ".ecosystem":           defaults.Ecosystem,
		configurationKeyPrefix + ".transport":           defaults.Transport,
		configurationKeyPrefix + ".endpoint":            defaults.Endpoint,
		configurationKeyPrefix + ".token_source":        defaults.TokenSource,
		configurationKeyPrefix + ".env_file":            defaults.EnvironmentFile,
		configurationKeyPrefix + ".timeout":             defaults.Timeout,
		configurationKeyPrefix + ".requests_per_second": defaults.RequestsPerSecond,
	}
}

// Sanitize trims values and restores defaults for blank fields.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration
	sanitized.Project = fallbackString(configuration.Project, defaults.Project)
	sanitized.Ecosystem = fallbackString(configuration.Ecosystem, defaults.Ecosystem)
	sanitized.Transport = fallbackString(configuration.Transport, defaults.Transport)
	sanitized.Endpoint = fallbackString(configuration.Endpoint, defaults.Endpoint)
	sanitized.TokenSource = strings.TrimSpace(configuration.TokenSource)
	sanitized.EnvironmentFile = strings.TrimSpace(configuration.EnvironmentFile)
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	if sanitized.RequestsPerSecond < 0 {
		sanitized.RequestsPerSecond = 0
	}
	return sanitized
}

// MainRepositoryTable merges configured overrides onto the default table.
func (configuration Configuration) MainRepositoryTable() MainRepositoryTable {
	return DefaultMainRepositoryTable().Merge(configuration.MainRepositories)
}

func fallbackString(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}
