package graphql

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/thanks/internal/execshell"
)

const (
	apiSubcommandConstant                = "api"
	graphqlEndpointArgumentConstant      = "graphql"
	inputFlagConstant                    = "--input"
	standardInputReferenceConstant       = "-"
	hostnameFlagConstant                 = "--hostname"
	githubCLITokenEnvironmentConstant    = "GH_TOKEN"
	executorNotConfiguredMessageConstant = "github cli executor not configured"
)

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CLITransportConfiguration describes how gh is invoked.
type CLITransportConfiguration struct {
	Hostname string
	Token    string
}

// CLITransport sends GraphQL documents through gh api graphql, reusing the gh auth session unless a token is supplied.
type CLITransport struct {
	executor      GitHubCommandExecutor
	configuration CLITransportConfiguration
}

var (
	// ErrExecutorNotConfigured indicates the CLI transport was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// NewCLITransport constructs a gh-backed transport.
func NewCLITransport(executor GitHubCommandExecutor, configuration CLITransportConfiguration) (*CLITransport, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &CLITransport{executor: executor, configuration: configuration}, nil
}

// Execute pipes the request body to gh. gh exits non-zero when the response carries
// GraphQL errors, so any captured output is still returned for partial-failure decoding.
func (transport *CLITransport) Execute(executionContext context.Context, requestBody []byte) ([]byte, error) {
	arguments := []string{apiSubcommandConstant, graphqlEndpointArgumentConstant, inputFlagConstant, standardInputReferenceConstant}
	hostname := strings.TrimSpace(transport.configuration.Hostname)
	if len(hostname) > 0 {
		arguments = append(arguments, hostnameFlagConstant, hostname)
	}

	commandDetails := execshell.CommandDetails{
		Arguments:     arguments,
		StandardInput: requestBody,
	}
	token := strings.TrimSpace(transport.configuration.Token)
	if len(token) > 0 {
		commandDetails.EnvironmentVariables = map[string]string{githubCLITokenEnvironmentConstant: token}
	}

	executionResult, executionError := transport.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) && len(strings.TrimSpace(failedError.Result.StandardOutput)) > 0 {
			return []byte(failedError.Result.StandardOutput), nil
		}
		return nil, executionError
	}

	return []byte(executionResult.StandardOutput), nil
}
