// Package services implements the business logic behind the macrodash HTTP
// API. Handlers parse and validate requests; services read the current
// dataset snapshot, compute and convert results into the JSON contracts of
// pkg/contracts/domain.
//
// # Available Services
//
//	- DatasetService: catalog, sheets, series selection, reload and exports
//	- ChartService: PNG line charts and the chart gallery
//	- AnalysisService: regressions, correlations and variable profiles
//	- HealthService: liveness and readiness
//
// # Error Handling
//
// Services return the sentinel errors of this package, or errors of the
// dataset, table, charts and analysis packages, wrapped with context.
// Handlers match them with errors.Is and render problem details.
//
// Every service reads the snapshot once per call, so a reload running
// concurrently never mixes two snapshots into one response.
package services
