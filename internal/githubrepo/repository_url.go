package githubrepo

import (
	"fmt"
	"strings"
)

const (
	githubURLPrefixConstant              = "https://github.com/"
	pathSeparatorConstant                = "/"
	gitSuffixConstant                    = ".git"
	canonicalURLTemplateConstant         = "https://github.com/%s/%s"
	urlShapeErrorTemplateConstant        = "%s: %s"
	requiredValueMessageConstant         = "value required"
	unsupportedHostMessageConstant       = "not a github.com https url"
	missingOwnerMessageConstant          = "owner segment missing"
	missingRepositoryMessageConstant     = "repository segment missing"
	fullNameSeparatorTemplateConstant    = "%s/%s"
	repositoryNameForbiddenCharsConstant = "\"\\"
)

// RepositoryURL identifies one repository hosted on github.com.
type RepositoryURL struct {
	Owner      string
	Repository string
}

// URLShapeError reports a URL that is not a recognizable GitHub repository URL.
type URLShapeError struct {
	Input   string
	Message string
}

// Error describes the mismatch.
func (shapeError URLShapeError) Error() string {
	return fmt.Sprintf(urlShapeErrorTemplateConstant, shapeError.Input, shapeError.Message)
}

// CanonicalURL renders the repository as https://github.com/{owner}/{repo}.
func (repositoryURL RepositoryURL) CanonicalURL() string {
	return fmt.Sprintf(canonicalURLTemplateConstant, repositoryURL.Owner, repositoryURL.Repository)
}

// FullName renders the repository as {owner}/{repo}.
func (repositoryURL RepositoryURL) FullName() string {
	return fmt.Sprintf(fullNameSeparatorTemplateConstant, repositoryURL.Owner, repositoryURL.Repository)
}

// ParseOwner extracts the owner segment from an https://github.com/{owner}[/...] URL.
func ParseOwner(rawURL string) (string, error) {
	segments, shapeError := splitGitHubPath(rawURL)
	if shapeError != nil {
		return "", shapeError
	}
	if len(segments) == 0 || len(segments[0]) == 0 {
		return "", URLShapeError{Input: rawURL, Message: missingOwnerMessageConstant}
	}
	return segments[0], nil
}

// ParseRepositoryURL extracts owner and repository from an https://github.com/{owner}/{repo}[.git][/...] URL.
func ParseRepositoryURL(rawURL string) (RepositoryURL, error) {
	owner, ownerError := ParseOwner(rawURL)
	if ownerError != nil {
		return RepositoryURL{}, ownerError
	}

	segments, _ := splitGitHubPath(rawURL)
	if len(segments) < 2 {
		return RepositoryURL{}, URLShapeError{Input: rawURL, Message: missingRepositoryMessageConstant}
	}

	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(repository) == 0 || strings.ContainsAny(repository, repositoryNameForbiddenCharsConstant) {
		return RepositoryURL{}, URLShapeError{Input: rawURL, Message: missingRepositoryMessageConstant}
	}

	return RepositoryURL{Owner: owner, Repository: repository}, nil
}

func splitGitHubPath(rawURL string) ([]string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if len(trimmedURL) == 0 {
		return nil, URLShapeError{Input: rawURL, Message: requiredValueMessageConstant}
	}
	if !strings.HasPrefix(trimmedURL, githubURLPrefixConstant) {
		return nil, URLShapeError{Input: rawURL, Message: unsupportedHostMessageConstant}
	}

	path := strings.TrimPrefix(trimmedURL, githubURLPrefixConstant)
	return strings.Split(path, pathSeparatorConstant), nil
}
