// Package dependencies adapts package-manager metadata into PackageRecord values.
//
// A Host reads one ecosystem's manifest and lock data from a project
// directory. ComposerHost understands composer.json together with
// vendor/composer/installed.json, and GoModuleHost understands go.mod.
// NewHost selects an implementation, optionally detecting the ecosystem from
// the files present in the project.
package dependencies
