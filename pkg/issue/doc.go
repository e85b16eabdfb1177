// Package issue reconciles the issues of the running analysis with known
// ones and carries identity, status and creation date across analyses.
//
// A file is tracked either on a branch (TrackerExecution) or on a pull
// request (PullRequestTrackerExecution); TrackingDelegator picks one from
// the analysis metadata. TrackFiles runs the per-file trackings in parallel.
// TrackingStep then walks the component tree, applies the Lifecycle to each
// outcome and hands every issue to the registered Visitors, such as the
// CreationDateCalculator.
package issue
