package http

import (
	"errors"

	"macrodash/internal/analysis"
	"macrodash/internal/charts"
	"macrodash/internal/dataset"
	apierrors "macrodash/internal/errors"
	"macrodash/internal/services"
	"macrodash/internal/table"
)

// serviceError maps service and domain errors to API errors. Anything
// else passes through and renders as a 500, or a 504 for deadlines.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidRange):
		return apierrors.ErrValidation("end", "end must not be before start")
	case errors.Is(err, services.ErrInvalidDate):
		return apierrors.ErrValidation("date", err.Error())
	case errors.Is(err, dataset.ErrSheetNotFound):
		return apierrors.SheetNotFound(err)
	case errors.Is(err, charts.ErrUnknownChart):
		return apierrors.ChartNotFound(err)
	case errors.Is(err, services.ErrVariableNotFound):
		return apierrors.ResourceNotFound(err, "Variable")
	case errors.Is(err, services.ErrUnknownRegression):
		return apierrors.ResourceNotFound(err, "Regression")
	case errors.Is(err, services.ErrFileNotFound):
		return apierrors.ResourceNotFound(err, "File")
	case errors.Is(err, analysis.ErrEmptyDataset):
		return apierrors.EmptyDataset(err)
	case errors.Is(err, charts.ErrNotEnoughData),
		errors.Is(err, services.ErrTooFewVariables),
		errors.Is(err, services.ErrNoData),
		errors.Is(err, table.ErrColumnNotFound):
		return apierrors.NotEnoughData(err)
	case errors.Is(err, analysis.ErrTooFewObservations),
		errors.Is(err, analysis.ErrSingularDesign),
		errors.Is(err, analysis.ErrConstantSeries),
		errors.Is(err, analysis.ErrDimensionMismatch):
		return apierrors.RegressionFailed(err)
	}
	return err
}
