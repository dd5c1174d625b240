// Package http implements the HTTP handlers of the macrodash viewer and API.
// Handlers are a thin layer over the services: they bind and validate the
// query, call one service method and render the result.
//
// # Routes
//
//	GET  /                               viewer page
//	GET  /api/catalog/variables          variable list
//	GET  /api/catalog/lookup?key=        name, code or legacy lookup
//	GET  /api/data/sheets                sheets of the current snapshot
//	GET  /api/data/sheets/{sheet}        one sheet, optional start and end
//	GET  /api/data/series                selection by sheet or frequency
//	POST /api/data/reload                reload the workbook
//	GET  /api/charts/line                PNG line chart of a selection
//	GET  /api/charts/gallery             gallery index
//	GET  /api/charts/gallery/{name}      one gallery PNG
//	GET  /api/analysis/regressions/{name}
//	GET  /api/analysis/correlation
//	GET  /api/analysis/describe
//	GET  /api/downloads/{workbook,script,view.csv,view.xlsx}
//	GET  /api/health, /api/health/ready, /api/version
//	POST /api/logs                       viewer log entries
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) GetSomething(w http.ResponseWriter, r *http.Request) {
//	    var q api.SomethingQuery
//	    if err := h.validator.BindQuery(r, &q); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    result, err := h.service.Something(r.Context(), q)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, serviceError(err))
//	        return
//	    }
//	    render.JSON(w, r, result)
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Sheet not found",
//	    "instance": "/api/data/sheets/Hourly",
//	    "error_code": "SHEET_NOT_FOUND"
//	}
//
// serviceError maps the sentinel errors of the services and domain
// packages to API errors. Missing cells are JSON null throughout.
package http
