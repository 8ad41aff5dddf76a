package dependencies

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultProjectDirectoryConstant = "."
)

// NewHost returns the host for the requested ecosystem, detecting it from the project files for EcosystemAuto.
func NewHost(ecosystem Ecosystem, projectDirectory string, fileReader FileReader) (Host, error) {
	resolvedDirectory := strings.TrimSpace(projectDirectory)
	if len(resolvedDirectory) == 0 {
		resolvedDirectory = defaultProjectDirectoryConstant
	}
	resolvedReader := resolveFileReader(fileReader)

	switch ecosystem {
	case EcosystemComposer:
		return NewComposerHost(resolvedDirectory, resolvedReader), nil
	case EcosystemGoModules:
		return NewGoModuleHost(resolvedDirectory, resolvedReader), nil
	case EcosystemAuto, "":
		return detectHost(resolvedDirectory, resolvedReader)
	default:
		return nil, fmt.Errorf(unsupportedEcosystemTemplateConstant, ecosystem)
	}
}

func detectHost(projectDirectory string, fileReader FileReader) (Host, error) {
	candidates := []struct {
		manifestName string
		build        func() Host
	}{
		{manifestName: composerManifestFileNameConstant, build: func() Host { return NewComposerHost(projectDirectory, fileReader) }},
		{manifestName: goModuleManifestFileNameConstant, build: func() Host { return NewGoModuleHost(projectDirectory, fileReader) }},
	}

	for _, candidate := range candidates {
		_, readError := fileReader(filepath.Join(projectDirectory, candidate.manifestName))
		if readError == nil {
			return candidate.build(), nil
		}
		if !errors.Is(readError, fs.ErrNotExist) {
			return nil, ManifestError{Path: filepath.Join(projectDirectory, candidate.manifestName), Cause: readError}
		}
	}

	return nil, ManifestError{Path: projectDirectory, Cause: ErrManifestMissing}
}

func resolveFileReader(fileReader FileReader) FileReader {
	if fileReader == nil {
		return os.ReadFile
	}
	return fileReader
}
