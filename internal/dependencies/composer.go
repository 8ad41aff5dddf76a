package dependencies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	composerManifestFileNameConstant      = "composer.json"
	composerInstalledRelativePathConstant = "vendor/composer/installed.json"
	composerPluginTypeConstant            = "composer-plugin"
	composerMetapackageTypeConstant       = "metapackage"
	composerProjectTypeConstant           = "project"
	composerBootstrapComposerKeyConstant  = "composer/composer"
	composerBootstrapComposerURLConstant  = "https://github.com/composer/composer"
	composerBootstrapPHPKeyConstant       = "php/php-src"
	composerBootstrapPHPURLConstant       = "https://github.com/php/php-src"
	jsonArrayOpeningConstant              = '['
)

// ComposerHost reads composer.json and vendor/composer/installed.json from a project directory.
type ComposerHost struct {
	projectDirectory string
	fileReader       FileReader
}

type composerManifest struct {
	Require    json.RawMessage `json:"require"`
	RequireDev json.RawMessage `json:"require-dev"`
}

type composerInstalledDocument struct {
	Packages []composerInstalledPackage `json:"packages"`
}

type composerInstalledPackage struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Source composerSource  `json:"source"`
	Extra  json.RawMessage `json:"extra"`
}

type composerSource struct {
	URL string `json:"url"`
}

// NewComposerHost constructs a composer host rooted at projectDirectory.
func NewComposerHost(projectDirectory string, fileReader FileReader) *ComposerHost {
	return &ComposerHost{
		projectDirectory: projectDirectory,
		fileReader:       resolveFileReader(fileReader),
	}
}

// Ecosystem identifies the composer ecosystem.
func (host *ComposerHost) Ecosystem() Ecosystem {
	return EcosystemComposer
}

// BootstrapTargets returns the composer and PHP runtime repositories.
func (host *ComposerHost) BootstrapTargets() []BootstrapTarget {
	return []BootstrapTarget{
		{LogicalKey: composerBootstrapComposerKeyConstant, URL: composerBootstrapComposerURLConstant},
		{LogicalKey: composerBootstrapPHPKeyConstant, URL: composerBootstrapPHPURLConstant},
	}
}

// LoadPackages reads installed packages and flags those required directly by composer.json.
func (host *ComposerHost) LoadPackages(loadContext context.Context) ([]PackageRecord, error) {
	if contextError := loadContext.Err(); contextError != nil {
		return nil, contextError
	}

	directPackageNames, manifestError := host.readDirectPackageNames()
	if manifestError != nil {
		return nil, manifestError
	}

	installedPath := filepath.Join(host.projectDirectory, filepath.FromSlash(composerInstalledRelativePathConstant))
	installedContents, readError := host.fileReader(installedPath)
	if readError != nil {
		return nil, InstalledPackagesError{Path: installedPath, Cause: readError}
	}

	installedPackages, decodeError := decodeComposerInstalledPackages(installedContents)
	if decodeError != nil {
		return nil, InstalledPackagesError{Path: installedPath, Cause: decodeError}
	}

	packageRecords := make([]PackageRecord, 0, len(installedPackages))
	for _, installedPackage := range installedPackages {
		packageName := strings.TrimSpace(installedPackage.Name)
		if len(packageName) == 0 {
			continue
		}
		_, isDirect := directPackageNames[strings.ToLower(packageName)]
		packageRecords = append(packageRecords, PackageRecord{
			Name:               packageName,
			SourceURL:          strings.TrimSpace(installedPackage.Source.URL),
			Extra:              decodeComposerExtra(installedPackage.Extra),
			Type:               mapComposerPackageType(installedPackage.Type),
			IsDirectDependency: isDirect,
		})
	}

	return packageRecords, nil
}

func (host *ComposerHost) readDirectPackageNames() (map[string]struct{}, error) {
	manifestPath := filepath.Join(host.projectDirectory, composerManifestFileNameConstant)
	manifestContents, readError := host.fileReader(manifestPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, ManifestError{Path: manifestPath, Cause: ErrManifestMissing}
		}
		return nil, ManifestError{Path: manifestPath, Cause: readError}
	}

	var manifest composerManifest
	if decodeError := json.Unmarshal(manifestContents, &manifest); decodeError != nil {
		return nil, ManifestError{Path: manifestPath, Cause: decodeError}
	}

	directPackageNames := make(map[string]struct{})
	for _, requirementSection := range []json.RawMessage{manifest.Require, manifest.RequireDev} {
		for packageName := range decodeRequirementSection(requirementSection) {
			directPackageNames[strings.ToLower(packageName)] = struct{}{}
		}
	}

	return directPackageNames, nil
}

// decodeRequirementSection tolerates the empty-array form composer writes for empty sections.
func decodeRequirementSection(section json.RawMessage) map[string]any {
	var requirements map[string]any
	if len(section) == 0 {
		return requirements
	}
	if decodeError := json.Unmarshal(section, &requirements); decodeError != nil {
		return nil
	}
	return requirements
}

func decodeComposerInstalledPackages(contents []byte) ([]composerInstalledPackage, error) {
	trimmedContents := bytes.TrimSpace(contents)
	if len(trimmedContents) > 0 && trimmedContents[0] == jsonArrayOpeningConstant {
		var legacyPackages []composerInstalledPackage
		if decodeError := json.Unmarshal(trimmedContents, &legacyPackages); decodeError != nil {
			return nil, decodeError
		}
		return legacyPackages, nil
	}

	var installedDocument composerInstalledDocument
	if decodeError := json.Unmarshal(trimmedContents, &installedDocument); decodeError != nil {
		return nil, decodeError
	}
	return installedDocument.Packages, nil
}

func decodeComposerExtra(rawExtra json.RawMessage) map[string]any {
	if len(rawExtra) == 0 {
		return nil
	}
	var extra map[string]any
	if decodeError := json.Unmarshal(rawExtra, &extra); decodeError != nil {
		return nil
	}
	return extra
}

func mapComposerPackageType(composerType string) PackageType {
	switch strings.ToLower(strings.TrimSpace(composerType)) {
	case composerPluginTypeConstant:
		return PackageTypePlugin
	case composerMetapackageTypeConstant:
		return PackageTypeMetapackage
	case composerProjectTypeConstant:
		return PackageTypeProject
	default:
		return PackageTypeLibrary
	}
}
