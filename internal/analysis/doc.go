// Package analysis runs the exploratory statistics behind the dashboard:
// ordinary least squares with classical, HC1 and HAC (Newey-West)
// standard errors, variance inflation factors, Durbin-Watson and
// Ljung-Box residual checks, standardized betas, pairwise correlation
// matrices, linear time trends and descriptive summaries.
//
// Linear algebra and distributions come from gonum; residual diagnostics
// and unit-root tests from goarima; descriptive statistics from gota.
//
// Every entry point refuses an empty frame with ErrEmptyDataset rather
// than producing NaN-filled results.
package analysis
