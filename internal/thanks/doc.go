// Package thanks stars the GitHub repositories behind a project's dependencies.
//
// RepositoryURLResolver turns package records into a sorted TargetMap,
// StarReconciler runs the lookup and mutation batches, and ReportFormatter
// renders the outcome. CommandBuilder wires them into the star command.
package thanks
