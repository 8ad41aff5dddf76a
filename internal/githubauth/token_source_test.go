package githubauth_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/thanks/internal/githubauth"
)

const (
	testTokenValueConstant       = "ghp_example"
	testFileTokenValueConstant   = "ghp_from_file"
	testDotenvTokenValueConstant = "ghp_from_dotenv"
	testTokenFilePathConstant    = "/secrets/token"
	testCustomVariableConstant   = "THANKS_TOKEN"
)

func environmentFrom(values map[string]string) githubauth.EnvironmentLookup {
	return func(key string) (string, bool) {
		value, exists := values[key]
		return value, exists
	}
}

func TestParseTokenSource(testInstance *testing.T) {
	testCases := []struct {
		name              string
		input             string
		expectError       bool
		expectedType      githubauth.TokenSourceType
		expectedReference string
	}{
		{name: "blank_selects_default", input: " ", expectedType: githubauth.TokenSourceTypeDefault},
		{name: "default_literal", input: "default", expectedType: githubauth.TokenSourceTypeDefault},
		{name: "bare_variable", input: testCustomVariableConstant, expectedType: githubauth.TokenSourceTypeEnvironment, expectedReference: testCustomVariableConstant},
		{name: "env_prefix", input: "env:" + testCustomVariableConstant, expectedType: githubauth.TokenSourceTypeEnvironment, expectedReference: testCustomVariableConstant},
		{name: "file_prefix", input: "file:" + testTokenFilePathConstant, expectedType: githubauth.TokenSourceTypeFile, expectedReference: testTokenFilePathConstant},
		{name: "env_without_name", input: "env: ", expectError: true},
		{name: "file_without_path", input: "file:", expectError: true},
		{name: "unknown_type", input: "vault:secret", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := githubauth.ParseTokenSource(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedType, source.Type)
			require.Equal(testInstance, testCase.expectedReference, source.Reference)
		})
	}
}

func TestTokenResolverResolveToken(testInstance *testing.T) {
	fileReader := func(path string) ([]byte, error) {
		if path == testTokenFilePathConstant {
			return []byte(" " + testFileTokenValueConstant + "\n"), nil
		}
		return nil, errors.New("missing")
	}

	testCases := []struct {
		name            string
		environment     map[string]string
		fileEnvironment map[string]string
		source          githubauth.TokenSourceConfiguration
		expectError     bool
		expectedToken   string
	}{
		{
			name:          "default_chain_prefers_gh_token",
			environment:   map[string]string{githubauth.EnvGitHubToken: "second", githubauth.EnvGitHubCLIToken: testTokenValueConstant},
			source:        githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeDefault},
			expectedToken: testTokenValueConstant,
		},
		{
			name:            "default_chain_prefers_dotenv",
			environment:     map[string]string{githubauth.EnvGitHubCLIToken: testTokenValueConstant},
			fileEnvironment: map[string]string{githubauth.EnvGitHubAPIToken: testDotenvTokenValueConstant},
			source:          githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeDefault},
			expectedToken:   testDotenvTokenValueConstant,
		},
		{
			name:        "default_chain_empty",
			environment: map[string]string{githubauth.EnvGitHubToken: "   "},
			source:      githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeDefault},
			expectError: true,
		},
		{
			name:          "named_variable",
			environment:   map[string]string{testCustomVariableConstant: testTokenValueConstant},
			source:        githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeEnvironment, Reference: testCustomVariableConstant},
			expectedToken: testTokenValueConstant,
		},
		{
			name:        "named_variable_missing",
			environment: map[string]string{},
			source:      githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeEnvironment, Reference: testCustomVariableConstant},
			expectError: true,
		},
		{
			name:          "file_token_trimmed",
			source:        githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeFile, Reference: testTokenFilePathConstant},
			expectedToken: testFileTokenValueConstant,
		},
		{
			name:        "file_unreadable",
			source:      githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeFile, Reference: "/elsewhere"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := githubauth.NewTokenResolver(environmentFrom(testCase.environment), fileReader, testCase.fileEnvironment)
			token, resolveError := resolver.ResolveToken(context.Background(), testCase.source)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}

func TestReadEnvironmentFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	environmentPath := filepath.Join(temporaryDirectory, ".env")
	require.NoError(testInstance, os.WriteFile(environmentPath, []byte("GITHUB_TOKEN="+testDotenvTokenValueConstant+"\n"), 0o600))

	environment, readError := githubauth.ReadEnvironmentFile(environmentPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testDotenvTokenValueConstant, environment[githubauth.EnvGitHubToken])

	missingEnvironment, missingError := githubauth.ReadEnvironmentFile(filepath.Join(temporaryDirectory, "absent.env"))
	require.NoError(testInstance, missingError)
	require.Empty(testInstance, missingEnvironment)

	blankEnvironment, blankError := githubauth.ReadEnvironmentFile("")
	require.NoError(testInstance, blankError)
	require.Nil(testInstance, blankEnvironment)
}
