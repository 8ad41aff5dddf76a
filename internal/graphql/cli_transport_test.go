package graphql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/thanks/internal/execshell"
	"github.com/temirov/thanks/internal/graphql"
)

const (
	testPartialResponseConstant = `{"data":{"_1":null},"errors":[{"path":["_1"],"message":"not found"}]}`
)

type stubGitHubExecutor struct {
	executionResult execshell.ExecutionResult
	executionError  error
	recordedDetails execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = details
	return executor.executionResult, executor.executionError
}

func TestNewCLITransportRequiresExecutor(testInstance *testing.T) {
	_, creationError := graphql.NewCLITransport(nil, graphql.CLITransportConfiguration{})
	require.ErrorIs(testInstance, creationError, graphql.ErrExecutorNotConfigured)
}

func TestCLITransportExecute(testInstance *testing.T) {
	testCases := []struct {
		name              string
		configuration     graphql.CLITransportConfiguration
		executor          *stubGitHubExecutor
		expectedArguments []string
		expectedResponse  string
		expectedToken     string
		expectError       bool
	}{
		{
			name:              "success_uses_gh_session",
			executor:          &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testResponseBodyConstant}},
			expectedArguments: []string{"api", "graphql", "--input", "-"},
			expectedResponse:  testResponseBodyConstant,
		},
		{
			name:              "hostname_and_token",
			configuration:     graphql.CLITransportConfiguration{Hostname: "github.example.com", Token: testTokenConstant},
			executor:          &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testResponseBodyConstant}},
			expectedArguments: []string{"api", "graphql", "--input", "-", "--hostname", "github.example.com"},
			expectedResponse:  testResponseBodyConstant,
			expectedToken:     testTokenConstant,
		},
		{
			name: "non_zero_exit_with_output",
			executor: &stubGitHubExecutor{executionError: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGitHub},
				Result:  execshell.ExecutionResult{StandardOutput: testPartialResponseConstant, ExitCode: 1},
			}},
			expectedArguments: []string{"api", "graphql", "--input", "-"},
			expectedResponse:  testPartialResponseConstant,
		},
		{
			name:              "execution_failure",
			executor:          &stubGitHubExecutor{executionError: errors.New("gh missing")},
			expectedArguments: []string{"api", "graphql", "--input", "-"},
			expectError:       true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			transport, creationError := graphql.NewCLITransport(testCase.executor, testCase.configuration)
			require.NoError(testInstance, creationError)

			responseBody, executionError := transport.Execute(context.Background(), []byte(testRequestBodyConstant))
			require.Equal(testInstance, testCase.expectedArguments, testCase.executor.recordedDetails.Arguments)
			require.Equal(testInstance, testRequestBodyConstant, string(testCase.executor.recordedDetails.StandardInput))
			require.Equal(testInstance, testCase.expectedToken, testCase.executor.recordedDetails.EnvironmentVariables["GH_TOKEN"])

			if testCase.expectError {
				require.Error(testInstance, executionError)
				return
			}
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedResponse, string(responseBody))
		})
	}
}
