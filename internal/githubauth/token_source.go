package githubauth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	tokenSourceSeparatorConstant               = ":"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	defaultTokenSourceTypeValueConstant        = "default"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	tokenNotFoundTemplateConstant              = "no GitHub token found in %s"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
	environmentFileReadErrorTemplateConstant   = "unable to read environment file %s: %w"
	tokenLocationJoinSeparatorConstant         = ", "
	tokenFileLocationTemplateConstant          = "token file %s"
)

// TokenSourceType enumerates the supported token retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
	TokenSourceTypeDefault     TokenSourceType = TokenSourceType(defaultTokenSourceTypeValueConstant)
)

// TokenSourceConfiguration specifies how to locate a credentials token.
type TokenSourceConfiguration struct {
	Type      TokenSourceType
	Reference string
}

// TokenNotFoundError reports that a token source produced no usable value.
type TokenNotFoundError struct {
	Location string
}

func (notFoundError TokenNotFoundError) Error() string {
	return fmt.Sprintf(tokenNotFoundTemplateConstant, notFoundError.Location)
}

// TokenResolver retrieves authentication tokens from configured sources.
type TokenResolver interface {
	ResolveToken(resolutionContext context.Context, source TokenSourceConfiguration) (string, error)
}

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// NewTokenResolver creates a token resolver. Nil collaborators fall back to the process environment
// and os.ReadFile. Values in fileEnvironment shadow the process environment.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileReader FileReader, fileEnvironment map[string]string) TokenResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}

	return &tokenResolver{
		dotenvLookup:      MapLookup(fileEnvironment),
		environmentLookup: environmentLookup,
		fileReader:        fileReader,
	}
}

// ParseTokenSource interprets "env:NAME", "file:/path", a bare variable name, or a blank value
// (the default chain).
func ParseTokenSource(sourceValue string) (TokenSourceConfiguration, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 || strings.EqualFold(trimmedValue, defaultTokenSourceTypeValueConstant) {
		return TokenSourceConfiguration{Type: TokenSourceTypeDefault}, nil
	}

	sourceType, reference, hasType := strings.Cut(trimmedValue, tokenSourceSeparatorConstant)
	if !hasType {
		return TokenSourceConfiguration{Type: TokenSourceTypeEnvironment, Reference: trimmedValue}, nil
	}
	reference = strings.TrimSpace(reference)

	switch normalizedType := strings.ToLower(strings.TrimSpace(sourceType)); normalizedType {
	case environmentTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSourceConfiguration{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return TokenSourceConfiguration{Type: TokenSourceTypeEnvironment, Reference: reference}, nil
	case fileTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSourceConfiguration{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return TokenSourceConfiguration{Type: TokenSourceTypeFile, Reference: reference}, nil
	default:
		return TokenSourceConfiguration{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, normalizedType)
	}
}

// ReadEnvironmentFile loads KEY=VALUE pairs from a dotenv file; a missing file yields no values.
func ReadEnvironmentFile(path string) (map[string]string, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, nil
	}

	environment, readError := godotenv.Read(trimmedPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(environmentFileReadErrorTemplateConstant, trimmedPath, readError)
	}
	return environment, nil
}

type tokenResolver struct {
	dotenvLookup      EnvironmentLookup
	environmentLookup EnvironmentLookup
	fileReader        FileReader
}

func (resolver *tokenResolver) ResolveToken(resolutionContext context.Context, source TokenSourceConfiguration) (string, error) {
	if contextError := resolutionContext.Err(); contextError != nil {
		return "", contextError
	}

	switch source.Type {
	case TokenSourceTypeDefault, "":
		return resolver.resolveDefault()
	case TokenSourceTypeEnvironment:
		return resolver.resolveVariable(source.Reference)
	case TokenSourceTypeFile:
		return resolver.resolveFile(source.Reference)
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}

func (resolver *tokenResolver) resolveDefault() (string, error) {
	defaultVariables := DefaultTokenVariables()
	if token, found := FirstToken(defaultVariables, resolver.dotenvLookup, resolver.environmentLookup); found {
		return token, nil
	}
	return "", TokenNotFoundError{Location: strings.Join(defaultVariables, tokenLocationJoinSeparatorConstant)}
}

func (resolver *tokenResolver) resolveVariable(variableName string) (string, error) {
	if token, found := LayeredLookup(resolver.dotenvLookup, resolver.environmentLookup)(variableName); found {
		return token, nil
	}
	return "", TokenNotFoundError{Location: variableName}
}

func (resolver *tokenResolver) resolveFile(path string) (string, error) {
	contents, readError := resolver.fileReader(path)
	if readError != nil {
		return "", fmt.Errorf(fileReadErrorTemplateConstant, path, readError)
	}
	token := strings.TrimSpace(string(contents))
	if len(token) == 0 {
		return "", TokenNotFoundError{Location: fmt.Sprintf(tokenFileLocationTemplateConstant, path)}
	}
	return token, nil
}
