package dependencies

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

const (
	goModuleManifestFileNameConstant = "go.mod"
	goModuleBootstrapKeyConstant     = "golang/go"
	goModuleBootstrapURLConstant     = "https://github.com/golang/go"
	githubModulePrefixConstant       = "github.com/"
	golangExtendedPrefixConstant     = "golang.org/x/"
	gopkgInPrefixConstant            = "gopkg.in/"
	uberModulePrefixConstant         = "go.uber.org/"
	modulePathSeparatorConstant      = "/"
	githubRepositoryTemplateConstant = "https://github.com/%s/%s"
	golangOrganizationConstant       = "golang"
	uberOrganizationConstant         = "uber-go"
	gopkgInOrganizationTemplate      = "go-%s"
)

// vanityModuleRepositories maps well-known vanity module paths to their GitHub mirrors.
var vanityModuleRepositories = map[string]string{
	"google.golang.org/grpc":     "https://github.com/grpc/grpc-go",
	"google.golang.org/protobuf": "https://github.com/protocolbuffers/protobuf-go",
	"google.golang.org/genai":    "https://github.com/googleapis/go-genai",
	"google.golang.org/api":      "https://github.com/googleapis/google-api-go-client",
	"cloud.google.com/go":        "https://github.com/googleapis/google-cloud-go",
	"go.opentelemetry.io/otel":   "https://github.com/open-telemetry/opentelemetry-go",
	"go.yaml.in/yaml/v3":         "https://github.com/yaml/go-yaml",
	"connectrpc.com/connect":     "https://github.com/connectrpc/connect-go",
	"entgo.io/ent":               "https://github.com/ent/ent",
}

// GoModuleHost reads go.mod from a project directory.
type GoModuleHost struct {
	projectDirectory string
	fileReader       FileReader
}

// NewGoModuleHost constructs a Go modules host rooted at projectDirectory.
func NewGoModuleHost(projectDirectory string, fileReader FileReader) *GoModuleHost {
	return &GoModuleHost{
		projectDirectory: projectDirectory,
		fileReader:       resolveFileReader(fileReader),
	}
}

// Ecosystem identifies the Go modules ecosystem.
func (host *GoModuleHost) Ecosystem() Ecosystem {
	return EcosystemGoModules
}

// BootstrapTargets returns the Go toolchain repository.
func (host *GoModuleHost) BootstrapTargets() []BootstrapTarget {
	return []BootstrapTarget{
		{LogicalKey: goModuleBootstrapKeyConstant, URL: goModuleBootstrapURLConstant},
	}
}

// LoadPackages lists every requirement of go.mod; requirements without an indirect comment are direct.
func (host *GoModuleHost) LoadPackages(loadContext context.Context) ([]PackageRecord, error) {
	if contextError := loadContext.Err(); contextError != nil {
		return nil, contextError
	}

	manifestPath := filepath.Join(host.projectDirectory, goModuleManifestFileNameConstant)
	manifestContents, readError := host.fileReader(manifestPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, ManifestError{Path: manifestPath, Cause: ErrManifestMissing}
		}
		return nil, ManifestError{Path: manifestPath, Cause: readError}
	}

	moduleFile, parseError := modfile.Parse(manifestPath, manifestContents, nil)
	if parseError != nil {
		return nil, ManifestError{Path: manifestPath, Cause: parseError}
	}

	packageRecords := make([]PackageRecord, 0, len(moduleFile.Require))
	for _, requirement := range moduleFile.Require {
		if requirement == nil {
			continue
		}
		packageRecords = append(packageRecords, PackageRecord{
			Name:               requirement.Mod.Path,
			SourceURL:          ModuleSourceURL(requirement.Mod.Path),
			Type:               PackageTypeLibrary,
			IsDirectDependency: !requirement.Indirect,
		})
	}

	return packageRecords, nil
}

// ModuleSourceURL derives the GitHub repository URL of a module path, or returns an empty string.
func ModuleSourceURL(modulePath string) string {
	trimmedPath := strings.TrimSpace(modulePath)
	if vanityURL, isVanity := vanityModuleRepositories[trimmedPath]; isVanity {
		return vanityURL
	}

	switch {
	case strings.HasPrefix(trimmedPath, githubModulePrefixConstant):
		segments := strings.Split(strings.TrimPrefix(trimmedPath, githubModulePrefixConstant), modulePathSeparatorConstant)
		if len(segments) < 2 || len(segments[0]) == 0 || len(segments[1]) == 0 {
			return ""
		}
		return fmt.Sprintf(githubRepositoryTemplateConstant, segments[0], segments[1])
	case strings.HasPrefix(trimmedPath, golangExtendedPrefixConstant):
		return firstSegmentRepository(golangOrganizationConstant, strings.TrimPrefix(trimmedPath, golangExtendedPrefixConstant))
	case strings.HasPrefix(trimmedPath, uberModulePrefixConstant):
		return firstSegmentRepository(uberOrganizationConstant, strings.TrimPrefix(trimmedPath, uberModulePrefixConstant))
	case strings.HasPrefix(trimmedPath, gopkgInPrefixConstant):
		return gopkgInRepository(trimmedPath)
	default:
		return ""
	}
}

func firstSegmentRepository(organization string, remainder string) string {
	repositoryName := strings.Split(remainder, modulePathSeparatorConstant)[0]
	if len(repositoryName) == 0 {
		return ""
	}
	return fmt.Sprintf(githubRepositoryTemplateConstant, organization, repositoryName)
}

// gopkgInRepository maps gopkg.in/pkg.vN to go-pkg/pkg and gopkg.in/user/pkg.vN to user/pkg.
func gopkgInRepository(modulePath string) string {
	pathPrefix, _, splitSucceeded := module.SplitPathVersion(modulePath)
	if !splitSucceeded {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(pathPrefix, gopkgInPrefixConstant), modulePathSeparatorConstant)
	switch len(segments) {
	case 1:
		if len(segments[0]) == 0 {
			return ""
		}
		return fmt.Sprintf(githubRepositoryTemplateConstant, fmt.Sprintf(gopkgInOrganizationTemplate, segments[0]), segments[0])
	case 2:
		return fmt.Sprintf(githubRepositoryTemplateConstant, segments[0], segments[1])
	default:
		return ""
	}
}
