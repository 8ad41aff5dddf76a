package thanks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/thanks/internal/dependencies"
	"github.com/temirov/thanks/internal/execshell"
	"github.com/temirov/thanks/internal/githubauth"
	"github.com/temirov/thanks/internal/graphql"
	"github.com/temirov/thanks/internal/utils"
)

const (
	starCommandUseConstant                  = "star"
	starCommandShortDescriptionConstant     = "Star the GitHub repositories of your dependencies"
	starCommandLongDescriptionConstant      = "star looks up the GitHub repositories behind the project's dependencies and stars the ones you have not starred yet."
	unexpectedArgumentsErrorMessageConstant = "star does not accept positional arguments"
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagDescriptionConstant           = "Look up repositories and report what would be starred without starring"
	projectFlagNameConstant                 = "project"
	projectFlagDescriptionConstant          = "Project directory containing the dependency manifest"
	ecosystemFlagNameConstant               = "ecosystem"
	ecosystemFlagDescriptionConstant        = "Dependency ecosystem"
	transportFlagNameConstant               = "transport"
	transportFlagDescriptionConstant        = "GraphQL transport"
	tokenSourceFlagNameConstant             = "token-source"
	tokenSourceFlagDescriptionConstant      = "Token source (env:NAME or file:/path); defaults to GH_TOKEN, GITHUB_TOKEN, GITHUB_API_TOKEN"
	ecosystemParseErrorTemplateConstant     = "invalid ecosystem: %w"
	transportParseErrorTemplateConstant     = "invalid transport: %w"
	tokenSourceParseErrorTemplateConstant   = "invalid token source: %w"
	hostResolutionErrorTemplateConstant     = "unable to resolve dependency host: %w"
	packageLoadErrorTemplateConstant        = "unable to load dependencies: %w"
	environmentFileErrorTemplateConstant    = "unable to load environment file: %w"
	tokenResolutionErrorTemplateConstant    = "unable to resolve GitHub token: %w"
	transportCreationErrorTemplateConstant  = "unable to create transport: %w"
	starringErrorTemplateConstant           = "unable to star repositories: %w"
	reportRenderErrorTemplateConstant       = "unable to render report: %w"
	publicGraphQLHostConstant               = "api.github.com"
	starRunStartedLogMessageConstant        = "star run started"
	starRunCompletedLogMessageConstant      = "star run completed"
	tokenFallbackLogMessageConstant         = "no GitHub token found, relying on gh authentication"
	logFieldRunIdentifierConstant           = "run_id"
	logFieldEcosystemConstant               = "ecosystem"
	logFieldProjectConstant                 = "project"
	logFieldTransportConstant               = "transport"
	logFieldPackageCountConstant            = "packages"
	logFieldStarTargetCountConstant         = "targets"
	logFieldNewlyStarredCountConstant       = "newly_starred"
	logFieldAlreadyStarredCountConstant     = "already_starred"
	logFieldFailedCountConstant             = "failed"
	logFieldUnconfirmedCountConstant        = "unconfirmed"
	logFieldStarDryRunConstant              = "dry_run"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current star configuration.
type ConfigurationProvider func() Configuration

// StarOptions is the resolved input of one star run.
type StarOptions struct {
	DryRun          bool
	Project         string
	Ecosystem       dependencies.Ecosystem
	Transport       TransportKind
	Endpoint        string
	TokenSource     githubauth.TokenSourceConfiguration
	EnvironmentFile string
	Configuration   Configuration
}

// CommandBuilder assembles the star command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileReader            func(path string) ([]byte, error)
	EnvironmentLookup     githubauth.EnvironmentLookup
	HTTPClient            *http.Client
	CommandRunner         execshell.CommandRunner
	OperatingSystem       string
	HomeDirectoryProvider utils.HomeDirectoryProvider
}

// Build constructs the star command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	starCommand := &cobra.Command{
		Use:   starCommandUseConstant,
		Short: starCommandShortDescriptionConstant,
		Long:  starCommandLongDescriptionConstant,
		RunE:  builder.runStar,
	}

	starCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	starCommand.Flags().String(projectFlagNameConstant, "", projectFlagDescriptionConstant)
	starCommand.Flags().String(ecosystemFlagNameConstant, "", utils.FormatChoiceUsage(
		string(dependencies.EcosystemAuto),
		[]string{string(dependencies.EcosystemAuto), string(dependencies.EcosystemComposer), string(dependencies.EcosystemGoModules)},
		ecosystemFlagDescriptionConstant,
	))
	starCommand.Flags().String(transportFlagNameConstant, "", utils.FormatChoiceUsage(
		string(TransportHTTP),
		[]string{string(TransportHTTP), string(TransportGitHubCLI)},
		transportFlagDescriptionConstant,
	))
	starCommand.Flags().String(tokenSourceFlagNameConstant, "", tokenSourceFlagDescriptionConstant)

	return starCommand, nil
}

func (builder *CommandBuilder) runStar(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	starOptions, optionsError := builder.parseStarOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger().With(zap.String(logFieldRunIdentifierConstant, uuid.NewString()))
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	host, hostError := dependencies.NewHost(starOptions.Ecosystem, starOptions.Project, builder.FileReader)
	if hostError != nil {
		return fmt.Errorf(hostResolutionErrorTemplateConstant, hostError)
	}

	packageRecords, loadError := host.LoadPackages(executionContext)
	if loadError != nil {
		return fmt.Errorf(packageLoadErrorTemplateConstant, loadError)
	}

	resolver := NewRepositoryURLResolver(starOptions.Configuration.MainRepositoryTable())
	targets := resolver.Resolve(host.BootstrapTargets(), packageRecords)

	logger.Info(
		starRunStartedLogMessageConstant,
		zap.String(logFieldEcosystemConstant, string(host.Ecosystem())),
		zap.String(logFieldProjectConstant, starOptions.Project),
		zap.String(logFieldTransportConstant, string(starOptions.Transport)),
		zap.Int(logFieldPackageCountConstant, len(packageRecords)),
		zap.Int(logFieldStarTargetCountConstant, len(targets)),
		zap.Bool(logFieldStarDryRunConstant, starOptions.DryRun),
	)

	transport, transportError := builder.resolveTransport(executionContext, logger, starOptions)
	if transportError != nil {
		return transportError
	}

	batcher, batcherError := graphql.NewBatcher(logger, transport)
	if batcherError != nil {
		return fmt.Errorf(transportCreationErrorTemplateConstant, batcherError)
	}

	reconciler, reconcilerError := NewStarReconciler(logger, batcher, starOptions.Configuration.Timeout)
	if reconcilerError != nil {
		return fmt.Errorf(starringErrorTemplateConstant, reconcilerError)
	}

	reconciliationResult, reconcileError := reconciler.Reconcile(executionContext, targets, starOptions.DryRun)
	if reconcileError != nil {
		return fmt.Errorf(starringErrorTemplateConstant, reconcileError)
	}

	logger.Info(
		starRunCompletedLogMessageConstant,
		zap.Int(logFieldNewlyStarredCountConstant, reconciliationResult.NewlyStarredCount()),
		zap.Int(logFieldAlreadyStarredCountConstant, reconciliationResult.AlreadyStarredCount),
		zap.Int(logFieldFailedCountConstant, len(reconciliationResult.Failures)),
		zap.Int(logFieldUnconfirmedCountConstant, len(reconciliationResult.Unconfirmed)),
	)

	formatter := NewReportFormatter()
	if len(builder.OperatingSystem) > 0 {
		formatter = NewReportFormatterForPlatform(builder.OperatingSystem)
	}
	if renderError := formatter.Render(utils.NewFlushingWriter(command.OutOrStdout()), reconciliationResult); renderError != nil {
		return fmt.Errorf(reportRenderErrorTemplateConstant, renderError)
	}

	return nil
}

func (builder *CommandBuilder) parseStarOptions(command *cobra.Command) (StarOptions, error) {
	configuration := builder.resolveConfiguration()

	projectFlagValue, projectFlagError := command.Flags().GetString(projectFlagNameConstant)
	if projectFlagError != nil {
		return StarOptions{}, projectFlagError
	}

	ecosystemFlagValue, ecosystemFlagError := command.Flags().GetString(ecosystemFlagNameConstant)
	if ecosystemFlagError != nil {
		return StarOptions{}, ecosystemFlagError
	}
	parsedEcosystem, ecosystemParseError := dependencies.ParseEcosystem(selectStringValue(ecosystemFlagValue, configuration.Ecosystem))
	if ecosystemParseError != nil {
		return StarOptions{}, fmt.Errorf(ecosystemParseErrorTemplateConstant, ecosystemParseError)
	}

	transportFlagValue, transportFlagError := command.Flags().GetString(transportFlagNameConstant)
	if transportFlagError != nil {
		return StarOptions{}, transportFlagError
	}
	parsedTransport, transportParseError := ParseTransportKind(selectStringValue(transportFlagValue, configuration.Transport))
	if transportParseError != nil {
		return StarOptions{}, fmt.Errorf(transportParseErrorTemplateConstant, transportParseError)
	}

	tokenSourceFlagValue, tokenSourceFlagError := command.Flags().GetString(tokenSourceFlagNameConstant)
	if tokenSourceFlagError != nil {
		return StarOptions{}, tokenSourceFlagError
	}
	parsedTokenSource, tokenSourceParseError := githubauth.ParseTokenSource(selectStringValue(tokenSourceFlagValue, configuration.TokenSource))
	if tokenSourceParseError != nil {
		return StarOptions{}, fmt.Errorf(tokenSourceParseErrorTemplateConstant, tokenSourceParseError)
	}

	dryRunValue := configuration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		flagDryRunValue, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunFlagError != nil {
			return StarOptions{}, dryRunFlagError
		}
		dryRunValue = flagDryRunValue
	}

	homeExpander := utils.NewHomeExpander(builder.HomeDirectoryProvider)
	projectDirectory := homeExpander.Expand(selectStringValue(projectFlagValue, configuration.Project))
	return StarOptions{
		DryRun:          dryRunValue,
		Project:         projectDirectory,
		Ecosystem:       parsedEcosystem,
		Transport:       parsedTransport,
		Endpoint:        configuration.Endpoint,
		TokenSource:     parsedTokenSource,
		EnvironmentFile: projectRelativePath(projectDirectory, homeExpander.Expand(configuration.EnvironmentFile)),
		Configuration:   configuration,
	}, nil
}

func (builder *CommandBuilder) resolveTransport(executionContext context.Context, logger *zap.Logger, starOptions StarOptions) (graphql.Transport, error) {
	fileEnvironment, environmentFileError := githubauth.ReadEnvironmentFile(starOptions.EnvironmentFile)
	if environmentFileError != nil {
		return nil, fmt.Errorf(environmentFileErrorTemplateConstant, environmentFileError)
	}

	tokenResolver := githubauth.NewTokenResolver(builder.EnvironmentLookup, githubauth.FileReader(builder.FileReader), fileEnvironment)
	token, tokenError := tokenResolver.ResolveToken(executionContext, starOptions.TokenSource)

	switch starOptions.Transport {
	case TransportGitHubCLI:
		if tokenError != nil {
			if starOptions.TokenSource.Type != githubauth.TokenSourceTypeDefault {
				return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, tokenError)
			}
			logger.Debug(tokenFallbackLogMessageConstant)
			token = ""
		}

		commandRunner := builder.CommandRunner
		if commandRunner == nil {
			commandRunner = execshell.NewOSCommandRunner()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
		if executorError != nil {
			return nil, fmt.Errorf(transportCreationErrorTemplateConstant, executorError)
		}
		cliTransport, cliTransportError := graphql.NewCLITransport(shellExecutor, graphql.CLITransportConfiguration{
			Hostname: enterpriseHostname(starOptions.Endpoint),
			Token:    token,
		})
		if cliTransportError != nil {
			return nil, fmt.Errorf(transportCreationErrorTemplateConstant, cliTransportError)
		}
		return cliTransport, nil
	default:
		if tokenError != nil {
			return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, tokenError)
		}
		httpTransport, httpTransportError := graphql.NewHTTPTransport(graphql.HTTPTransportConfiguration{
			Endpoint:          starOptions.Endpoint,
			Token:             token,
			RequestsPerSecond: starOptions.Configuration.RequestsPerSecond,
			HTTPClient:        builder.HTTPClient,
		})
		if httpTransportError != nil {
			return nil, fmt.Errorf(transportCreationErrorTemplateConstant, httpTransportError)
		}
		return httpTransport, nil
	}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

// enterpriseHostname returns the gh --hostname value for a non-public endpoint.
func enterpriseHostname(endpoint string) string {
	parsedEndpoint, parseError := url.Parse(strings.TrimSpace(endpoint))
	if parseError != nil || len(parsedEndpoint.Host) == 0 {
		return ""
	}
	if strings.EqualFold(parsedEndpoint.Host, publicGraphQLHostConstant) {
		return ""
	}
	return parsedEndpoint.Host
}

// projectRelativePath anchors a relative path at the project directory; blank stays blank.
func projectRelativePath(projectDirectory string, path string) string {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 || filepath.IsAbs(trimmedPath) {
		return trimmedPath
	}
	return filepath.Join(projectDirectory, trimmedPath)
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
