package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/thanks/internal/thanks"
	"github.com/temirov/thanks/internal/utils"
)

const (
	applicationNameConstant                = "thanks"
	applicationShortDescriptionConstant    = "Give thanks to the open-source projects you depend on"
	applicationLongDescriptionConstant     = "thanks reads your project's dependencies and stars their GitHub repositories on your behalf."
	configFileFlagNameConstant             = "config"
	configFileFlagUsageConstant            = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant               = "log-level"
	logLevelFlagUsageConstant              = "Override the configured log level."
	logFormatFlagNameConstant              = "log-format"
	logFormatFlagUsageConstant             = "Override the configured log format (structured or console)."
	commonLogLevelConfigKeyConstant        = "common.log_level"
	commonLogFormatConfigKeyConstant       = "common.log_format"
	thanksConfigurationKeyConstant         = "thanks"
	environmentPrefixConstant              = "THANKS"
	configurationNameConstant              = "config"
	configurationTypeConstant              = "yaml"
	loggerReadyMessageConstant             = "logger ready"
	logFieldLogLevelConstant               = "log_level"
	logFieldLogFormatConstant              = "log_format"
	logFieldConfigFileConstant             = "config_file"
	loadConfigurationErrorTemplateConstant = "unable to load configuration: %w"
	configureLoggerErrorTemplateConstant   = "unable to create logger: %w"
	flushLoggerErrorTemplateConstant       = "unable to flush logger: %w"
	buildCommandErrorTemplateConstant      = "unable to build %s command: %w"
)

// Sync on a terminal or pipe reports these; they carry no lost output.
var ignorableSyncErrors = []error{syscall.ENOTSUP, syscall.EINVAL, syscall.ENOTTY}

// ApplicationConfiguration mirrors the configuration document: shared logging settings plus the star command section.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Thanks thanks.Configuration           `mapstructure:"thanks"`
}

// ApplicationCommonConfiguration holds the logging settings.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type rootFlagValues struct {
	configurationFilePath string
	logLevel              string
	logFormat             string
}

// Application owns the command tree together with the configuration and logger it builds before any subcommand runs.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	flagValues            rootFlagValues
}

// NewApplication constructs the root command and registers the star subcommand.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.ConfigurationSearchPaths(applicationNameConstant),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}
	application.rootCommand = application.newRootCommand()

	starCommand, starBuildError := (&thanks.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return application.logger },
		ConfigurationProvider: func() thanks.Configuration { return application.configuration.Thanks },
	}).Build()
	if starBuildError != nil {
		return nil, fmt.Errorf(buildCommandErrorTemplateConstant, thanksConfigurationKeyConstant, starBuildError)
	}
	application.rootCommand.AddCommand(starCommand)

	return application, nil
}

// Execute runs the command tree and flushes the logger afterwards.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if flushError := application.flushLogger(); flushError != nil {
		return errors.Join(executionError, fmt.Errorf(flushLoggerErrorTemplateConstant, flushError))
	}
	return executionError
}

// Execute is the process entrypoint used by main.
func Execute() error {
	application, applicationError := NewApplication()
	if applicationError != nil {
		return applicationError
	}
	return application.Execute()
}

func (application *Application) newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	rootCommand.SetContext(context.Background())
	application.flagValues.bind(rootCommand.PersistentFlags())

	return rootCommand
}

func (values *rootFlagValues) bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&values.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagSet.StringVar(&values.logLevel, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	flagSet.StringVar(&values.logFormat, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(
		application.flagValues.configurationFilePath,
		applicationDefaultValues(),
		&application.configuration,
	)
	if loadError != nil {
		return fmt.Errorf(loadConfigurationErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if rootFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.flagValues.logLevel
	}
	if rootFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.flagValues.logFormat
	}

	return application.configureLogger()
}

func (application *Application) configureLogger() error {
	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(configureLoggerErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(configureLoggerErrorTemplateConstant, logFormatError)
	}

	logger, loggerError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerError != nil {
		return fmt.Errorf(configureLoggerErrorTemplateConstant, loggerError)
	}
	application.logger = logger

	logger.Debug(
		loggerReadyMessageConstant,
		zap.String(logFieldLogLevelConstant, string(logLevel)),
		zap.String(logFieldLogFormatConstant, string(logFormat)),
		zap.String(logFieldConfigFileConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	for _, ignorableError := range ignorableSyncErrors {
		if errors.Is(syncError, ignorableError) {
			return nil
		}
	}
	return syncError
}

func applicationDefaultValues() map[string]any {
	defaultValues := thanks.DefaultConfigurationValues(thanksConfigurationKeyConstant)
	defaultValues[commonLogLevelConfigKeyConstant] = string(utils.LogLevelInfo)
	defaultValues[commonLogFormatConfigKeyConstant] = string(utils.LogFormatConsole)
	return defaultValues
}

// rootFlagChanged reports whether a persistent flag was set on the command line, whichever command is executing.
func rootFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	if command.Flags().Changed(flagName) {
		return true
	}
	return command.Root().PersistentFlags().Changed(flagName)
}
