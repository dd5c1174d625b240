// Package config loads the macrodash configuration.
//
// Values come from three layers, later layers winning:
//
//	1. Default()
//	2. a YAML file: $MACRO_CONFIG, else config.yaml or configs/config.yaml
//	3. environment variables with the MACRO prefix, e.g.
//
//	MACRO_SERVER_PORT=8080
//	MACRO_DATA_WORKBOOK_PATH=Economic_Indicators.xlsx
//	MACRO_DATA_SOURCE=sheets
//	MACRO_DATA_SPREADSHEET_ID=1AbC...
//	MACRO_LOGGING_LEVEL=debug
//	MACRO_SECURITY_ALLOWED_ORIGINS=http://localhost:8080,http://127.0.0.1:8080
//
// A .env file in the working directory is loaded into the environment
// before the variables are read. Variables already set are not replaced.
//
// The result is validated before it is returned: ports, timeouts, the log
// output, the data source kind and the default date range.
package config
