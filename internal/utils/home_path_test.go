package utils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/thanks/internal/utils"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeDirectory := filepath.Join(string(filepath.Separator), "home", "octocat")

	testCases := []struct {
		name         string
		provider     utils.HomeDirectoryProvider
		candidate    string
		expectedPath string
	}{
		{
			name:         "bare_tilde",
			candidate:    "~",
			expectedPath: homeDirectory,
		},
		{
			name:         "tilde_prefix",
			candidate:    "~/projects/app",
			expectedPath: filepath.Join(homeDirectory, "projects", "app"),
		},
		{
			name:         "other_user_untouched",
			candidate:    "~alice/app",
			expectedPath: "~alice/app",
		},
		{
			name:         "relative_untouched",
			candidate:    "./app",
			expectedPath: "./app",
		},
		{
			name:         "unknown_home",
			provider:     func() (string, error) { return "", errors.New("no home") },
			candidate:    "~/app",
			expectedPath: "~/app",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = func() (string, error) { return homeDirectory, nil }
			}
			require.Equal(testInstance, testCase.expectedPath, utils.NewHomeExpander(provider).Expand(testCase.candidate))
		})
	}
}
