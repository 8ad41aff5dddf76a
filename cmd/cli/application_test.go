package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testComposerManifestConstant  = `{"require":{"guzzlehttp/guzzle":"^7.8"}}`
	testComposerInstalledConstant = `{"packages":[{"name":"guzzlehttp/guzzle","type":"library","source":{"type":"git","url":"https://github.com/guzzle/guzzle.git"}}]}`
	testLookupResponseConstant    = `{"data":{` +
		`"_1":{"id":"R_composer","viewerHasStarred":true},` +
		`"_2":{"id":"R_guzzle","viewerHasStarred":false},` +
		`"_3":{"id":"R_php","viewerHasStarred":false}}}`
	testMutationResponseConstant = `{"data":{` +
		`"_2":{"clientMutationId":"_2"},` +
		`"_3":{"clientMutationId":"_3"}}}`
	testConfigurationTemplateConstant = "thanks:\n  project: %s\n  endpoint: %s\n  env_file: \"\"\n"
	testTokenConstant                 = "ghp_application"
)

type starServer struct {
	mutex     sync.Mutex
	mutations int
}

func (server *starServer) ServeHTTP(responseWriter http.ResponseWriter, request *http.Request) {
	var payload map[string]string
	if decodeError := json.NewDecoder(request.Body).Decode(&payload); decodeError != nil {
		responseWriter.WriteHeader(http.StatusBadRequest)
		return
	}
	if strings.HasPrefix(payload["query"], "mutation{") {
		server.mutex.Lock()
		server.mutations++
		server.mutex.Unlock()
		_, _ = responseWriter.Write([]byte(testMutationResponseConstant))
		return
	}
	_, _ = responseWriter.Write([]byte(testLookupResponseConstant))
}

func (server *starServer) mutationCount() int {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return server.mutations
}

func writeApplicationFixture(testInstance *testing.T, endpoint string) string {
	testInstance.Helper()
	projectDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectDirectory, "composer.json"), []byte(testComposerManifestConstant), 0o600))
	installedDirectory := filepath.Join(projectDirectory, "vendor", "composer")
	require.NoError(testInstance, os.MkdirAll(installedDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(installedDirectory, "installed.json"), []byte(testComposerInstalledConstant), 0o600))

	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	configurationContent := fmt.Sprintf(testConfigurationTemplateConstant, projectDirectory, endpoint)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))
	return configurationPath
}

func TestApplicationStarCommand(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		arguments             []string
		environment           map[string]string
		expectedMutationCount int
		expectedSummary       string
	}{
		{
			name:                  "stars_with_configuration_file",
			arguments:             []string{"star"},
			expectedMutationCount: 1,
			expectedSummary:       "2 newly starred, 1 already starred, 0 failed",
		},
		{
			name:                  "dry_run_flag",
			arguments:             []string{"star", "--dry-run"},
			expectedMutationCount: 0,
			expectedSummary:       "2 to star, 1 already starred, 0 failed",
		},
		{
			name:                  "dry_run_from_environment",
			arguments:             []string{"star"},
			environment:           map[string]string{"THANKS_THANKS_DRY_RUN": "true"},
			expectedMutationCount: 0,
			expectedSummary:       "2 to star, 1 already starred, 0 failed",
		},
		{
			name:                  "log_flags_override_configuration",
			arguments:             []string{"--log-level", "debug", "--log-format", "structured", "star"},
			expectedMutationCount: 1,
			expectedSummary:       "2 newly starred, 1 already starred, 0 failed",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			testInstance.Setenv("GH_TOKEN", testTokenConstant)
			for environmentKey, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentKey, environmentValue)
			}

			server := &starServer{}
			httpServer := httptest.NewServer(server)
			defer httpServer.Close()

			configurationPath := writeApplicationFixture(testInstance, httpServer.URL)

			application, applicationError := NewApplication()
			require.NoError(testInstance, applicationError)

			var output bytes.Buffer
			application.rootCommand.SetOut(&output)
			application.rootCommand.SetArgs(append([]string{"--config", configurationPath}, testCase.arguments...))
			require.NoError(testInstance, application.Execute())

			require.Equal(testInstance, testCase.expectedMutationCount, server.mutationCount())
			require.Contains(testInstance, output.String(), testCase.expectedSummary+"\n")
			require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
		})
	}
}

func TestApplicationRejectsInvalidLogLevel(testInstance *testing.T) {
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	application.rootCommand.SetOut(&bytes.Buffer{})
	application.rootCommand.SetArgs([]string{"--log-level", "verbose", "star"})

	executionError := application.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unsupported log level")
}

func TestApplicationRegistersStarCommand(testInstance *testing.T) {
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	starCommand, _, findError := application.rootCommand.Find([]string{"star"})
	require.NoError(testInstance, findError)
	require.Equal(testInstance, "star", starCommand.Name())
	require.NotNil(testInstance, starCommand.Flags().Lookup("dry-run"))
	require.Contains(testInstance, starCommand.Flags().Lookup("transport").Usage, "<HTTP|gh>")
}

func TestApplicationLoadsEmbeddedDefaults(testInstance *testing.T) {
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))
	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "auto", application.configuration.Thanks.Ecosystem)
	require.Equal(testInstance, "https://api.github.com/graphql", application.configuration.Thanks.Endpoint)
	require.NotNil(testInstance, application.logger)
}
