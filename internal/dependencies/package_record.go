package dependencies

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	thanksExtraKeyConstant                 = "thanks"
	thanksExtraNameKeyConstant             = "name"
	thanksExtraURLKeyConstant              = "url"
	manifestMissingMessageConstant         = "dependency manifest not found"
	manifestErrorTemplateConstant          = "unable to read manifest %s: %v"
	installedPackagesErrorTemplateConstant = "unable to read installed packages %s: %v"
	unsupportedEcosystemTemplateConstant   = "unsupported ecosystem %q"
)

// PackageType classifies a package as code or as a non-code container.
type PackageType string

// Package types understood by the resolver.
const (
	PackageTypeLibrary     PackageType = "library"
	PackageTypePlugin      PackageType = "plugin"
	PackageTypeMetapackage PackageType = "metapackage"
	PackageTypeProject     PackageType = "project"
)

// IsCode reports whether source URL inference applies to the package type.
func (packageType PackageType) IsCode() bool {
	switch packageType {
	case PackageTypePlugin, PackageTypeMetapackage:
		return false
	default:
		return true
	}
}

// Ecosystem names a package manager.
type Ecosystem string

// Supported ecosystems.
const (
	EcosystemAuto      Ecosystem = "auto"
	EcosystemComposer  Ecosystem = "composer"
	EcosystemGoModules Ecosystem = "gomod"
)

// ParseEcosystem normalizes textual ecosystem values; blank means auto.
func ParseEcosystem(ecosystemValue string) (Ecosystem, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(ecosystemValue))
	switch Ecosystem(normalizedValue) {
	case "", EcosystemAuto:
		return EcosystemAuto, nil
	case EcosystemComposer:
		return EcosystemComposer, nil
	case EcosystemGoModules:
		return EcosystemGoModules, nil
	default:
		return "", fmt.Errorf(unsupportedEcosystemTemplateConstant, ecosystemValue)
	}
}

// PackageRecord describes one resolved package as reported by the host.
type PackageRecord struct {
	Name               string
	SourceURL          string
	Extra              map[string]any
	Type               PackageType
	IsDirectDependency bool
}

// ThanksOverride is an explicit star target declared in package metadata.
type ThanksOverride struct {
	Name string
	URL  string
}

// ThanksOverride returns the extra.thanks name/url pair when both are present.
func (record PackageRecord) ThanksOverride() (ThanksOverride, bool) {
	thanksValue, thanksExists := record.Extra[thanksExtraKeyConstant]
	if !thanksExists {
		return ThanksOverride{}, false
	}
	thanksFields, isMapping := thanksValue.(map[string]any)
	if !isMapping {
		return ThanksOverride{}, false
	}
	nameValue, nameIsString := thanksFields[thanksExtraNameKeyConstant].(string)
	urlValue, urlIsString := thanksFields[thanksExtraURLKeyConstant].(string)
	if !nameIsString || !urlIsString {
		return ThanksOverride{}, false
	}
	nameValue = strings.TrimSpace(nameValue)
	urlValue = strings.TrimSpace(urlValue)
	if len(nameValue) == 0 || len(urlValue) == 0 {
		return ThanksOverride{}, false
	}
	return ThanksOverride{Name: nameValue, URL: urlValue}, true
}

// BootstrapTarget is a star target every run of an ecosystem includes.
type BootstrapTarget struct {
	LogicalKey string
	URL        string
}

// Host supplies the dependency list of one project for one ecosystem.
type Host interface {
	Ecosystem() Ecosystem
	BootstrapTargets() []BootstrapTarget
	LoadPackages(loadContext context.Context) ([]PackageRecord, error)
}

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// ErrManifestMissing indicates the project declares no readable dependency manifest.
var ErrManifestMissing = errors.New(manifestMissingMessageConstant)

// ManifestError reports a manifest that could not be located, read, or parsed.
type ManifestError struct {
	Path  string
	Cause error
}

// Error describes the manifest failure.
func (manifestError ManifestError) Error() string {
	return fmt.Sprintf(manifestErrorTemplateConstant, manifestError.Path, manifestError.Cause)
}

// Unwrap exposes the underlying cause.
func (manifestError ManifestError) Unwrap() error {
	return manifestError.Cause
}

// InstalledPackagesError reports an unreadable list of installed packages.
type InstalledPackagesError struct {
	Path  string
	Cause error
}

// Error describes the installed packages failure.
func (installedError InstalledPackagesError) Error() string {
	return fmt.Sprintf(installedPackagesErrorTemplateConstant, installedError.Path, installedError.Cause)
}

// Unwrap exposes the underlying cause.
func (installedError InstalledPackagesError) Unwrap() error {
	return installedError.Cause
}
