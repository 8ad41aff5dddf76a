package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/thanks/internal/utils"
)

const (
	testEnvironmentPrefixConstant            = "TESTTHANKS"
	testConfigurationNameConstant            = "config"
	testConfigurationTypeConstant            = "yaml"
	testConfigFileNameConstant               = "config.yaml"
	testApplicationDirectoryNameConstant     = "thanks"
	testXDGConfigHomeDirectoryNameConstant   = "config"
	testEmbeddedConfigurationConstant        = "common:\n  log_level: warn\nthanks:\n  transport: http\n  dry_run: false\n"
	testFileConfigurationConstant            = "thanks:\n  transport: gh\n"
	testDryRunEnvironmentVariableConstant    = "TESTTHANKS_THANKS_DRY_RUN"
	testTransportEnvironmentVariableConstant = "TESTTHANKS_THANKS_TRANSPORT"
)

type loaderFixture struct {
	Common loaderCommonFixture `mapstructure:"common"`
	Thanks loaderThanksFixture `mapstructure:"thanks"`
}

type loaderCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

type loaderThanksFixture struct {
	Transport string `mapstructure:"transport"`
	DryRun    bool   `mapstructure:"dry_run"`
	Project   string `mapstructure:"project"`
}

func loaderDefaults() map[string]any {
	return map[string]any{
		"common.log_level": "info",
		"thanks.transport": "http",
		"thanks.dry_run":   false,
		"thanks.project":   ".",
	}
}

func TestConfigurationLoaderPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name              string
		embedded          string
		fileContent       string
		environment       map[string]string
		expectedLogLevel  string
		expectedTransport string
		expectedDryRun    bool
	}{
		{
			name:              "defaults_only",
			expectedLogLevel:  "info",
			expectedTransport: "http",
		},
		{
			name:              "embedded_over_defaults",
			embedded:          testEmbeddedConfigurationConstant,
			expectedLogLevel:  "warn",
			expectedTransport: "http",
		},
		{
			name:              "file_over_embedded",
			embedded:          testEmbeddedConfigurationConstant,
			fileContent:       testFileConfigurationConstant,
			expectedLogLevel:  "warn",
			expectedTransport: "gh",
		},
		{
			name:              "environment_over_file",
			embedded:          testEmbeddedConfigurationConstant,
			fileContent:       testFileConfigurationConstant,
			environment:       map[string]string{testTransportEnvironmentVariableConstant: "http", testDryRunEnvironmentVariableConstant: "true"},
			expectedLogLevel:  "warn",
			expectedTransport: "http",
			expectedDryRun:    true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			for environmentKey, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentKey, environmentValue)
			}

			configurationFilePath := ""
			if len(testCase.fileContent) > 0 {
				configurationFilePath = filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testCase.fileContent), 0o600))
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
			loader.SetEmbeddedConfiguration([]byte(testCase.embedded), testConfigurationTypeConstant)

			var loadedConfiguration loaderFixture
			metadata, loadError := loader.LoadConfiguration(configurationFilePath, loaderDefaults(), &loadedConfiguration)
			require.NoError(testInstance, loadError)

			require.Equal(testInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)
			require.Equal(testInstance, testCase.expectedTransport, loadedConfiguration.Thanks.Transport)
			require.Equal(testInstance, testCase.expectedDryRun, loadedConfiguration.Thanks.DryRun)
			require.Equal(testInstance, ".", loadedConfiguration.Thanks.Project)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderDiscoversSearchPaths(testInstance *testing.T) {
	testCases := []struct {
		name            string
		selectDirectory func(workingDirectory string, userDirectory string) string
	}{
		{
			name:            "working_directory",
			selectDirectory: func(workingDirectory string, userDirectory string) string { return workingDirectory },
		},
		{
			name:            "user_configuration_directory",
			selectDirectory: func(workingDirectory string, userDirectory string) string { return userDirectory },
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			homeDirectory := testInstance.TempDir()
			testInstance.Setenv("HOME", homeDirectory)
			testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, testXDGConfigHomeDirectoryNameConstant))

			userConfigurationBase, userConfigurationError := os.UserConfigDir()
			require.NoError(testInstance, userConfigurationError)

			workingDirectory := testInstance.TempDir()
			userDirectory := filepath.Join(userConfigurationBase, testApplicationDirectoryNameConstant)
			selectedDirectory := testCase.selectDirectory(workingDirectory, userDirectory)
			require.NoError(testInstance, os.MkdirAll(selectedDirectory, 0o755))

			configurationFilePath := filepath.Join(selectedDirectory, testConfigFileNameConstant)
			require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testFileConfigurationConstant), 0o600))

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{workingDirectory, userDirectory})

			var loadedConfiguration loaderFixture
			metadata, loadError := loader.LoadConfiguration("", loaderDefaults(), &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, "gh", loadedConfiguration.Thanks.Transport)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationSearchPaths(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, testXDGConfigHomeDirectoryNameConstant))

	userConfigurationBase, userConfigurationError := os.UserConfigDir()
	require.NoError(testInstance, userConfigurationError)

	require.Equal(
		testInstance,
		[]string{".", filepath.Join(userConfigurationBase, testApplicationDirectoryNameConstant)},
		utils.ConfigurationSearchPaths(testApplicationDirectoryNameConstant),
	)
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var loadedConfiguration loaderFixture
	_, loadError := loader.LoadConfiguration(filepath.Join(testInstance.TempDir(), testConfigFileNameConstant), loaderDefaults(), &loadedConfiguration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}

func TestConfigurationLoaderRejectsMalformedEmbeddedConfiguration(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte("common: [unterminated"), testConfigurationTypeConstant)

	var loadedConfiguration loaderFixture
	_, loadError := loader.LoadConfiguration("", loaderDefaults(), &loadedConfiguration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to merge embedded configuration")
}
