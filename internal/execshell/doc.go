// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor and exposes OSCommandRunner
// for default process execution. The GitHub CLI transport uses it to run
// gh api graphql in a testable manner.
package execshell
