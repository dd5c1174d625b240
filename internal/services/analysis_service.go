package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"macrodash/internal/analysis"
	"macrodash/internal/catalog"
	"macrodash/internal/config"
	"macrodash/internal/infrastructure"
	"macrodash/internal/series"
	api "macrodash/pkg/contracts/api/v1"
	"macrodash/pkg/contracts/domain"
)

// AnalysisService runs the statistics of the analysis page over the
// monthly frame of the current snapshot.
type AnalysisService struct {
	store   SnapshotStore
	data    config.DataConfig
	metrics *infrastructure.DomainMetrics
	logger  *slog.Logger
}

// NewAnalysisService creates an analysis service. metrics may be nil.
func NewAnalysisService(store SnapshotStore, data config.DataConfig, metrics *infrastructure.DomainMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		store:   store,
		data:    data,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "analysis_service")),
	}
}

// Regressions lists the names of the standard regressions.
func (s *AnalysisService) Regressions() []string {
	specs := analysis.Specs()
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Regression fits a standard regression on the monthly frame cut to the
// configured analysis window.
func (s *AnalysisService) Regression(ctx context.Context, name string) (*domain.Regression, error) {
	spec, ok := analysis.Specs()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegression, name)
	}

	frame := s.store.Current().Monthly().FilterRange(s.data.Start(), s.data.End())
	report, err := analysis.Run(ctx, frame, spec)
	infrastructure.RecordRegression(ctx, s.metrics, name, err)
	if err != nil {
		s.logger.WarnContext(ctx, "regression failed",
			slog.String("regression", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	var summary bytes.Buffer
	if err := report.WriteSummary(&summary); err != nil {
		return nil, fmt.Errorf("%s regression summary: %w", name, err)
	}

	s.logger.InfoContext(ctx, "regression fitted",
		slog.String("regression", name),
		slog.Int("observations", report.Observations),
		slog.Float64("r2", report.R2))
	return regressionResponse(report, summary.String()), nil
}

// Correlation computes pairwise correlations between monthly variables
// over the query range. Without variables it uses every monthly
// indicator present. Variables absent from the frame are reported.
func (s *AnalysisService) Correlation(ctx context.Context, q api.CorrelationQuery) (*domain.Correlation, error) {
	start, end, err := parseWindow(q.Start, q.End, s.data.Start(), s.data.End())
	if err != nil {
		return nil, err
	}
	snap := s.store.Current()
	frame := snap.Monthly().FilterRange(start, end)

	requested := q.Variables()
	if len(requested) == 0 {
		for _, ind := range snap.Catalog().ByFrequency(catalog.Monthly) {
			if frame.Has(ind.Name) {
				requested = append(requested, ind.Name)
			}
		}
	}

	var (
		cols     []string
		warnings []domain.ColumnWarning
		seen     = make(map[string]bool)
	)
	for _, v := range requested {
		col := snap.Catalog().Resolve(v)
		switch {
		case seen[col]:
		case !frame.Has(col):
			warnings = append(warnings, domain.ColumnWarning{Column: v, Message: "not in the monthly frame"})
		default:
			cols = append(cols, col)
		}
		seen[col] = true
	}
	if len(cols) < 2 {
		return nil, fmt.Errorf("%w: %d usable", ErrTooFewVariables, len(cols))
	}

	m, err := analysis.Correlations(frame, cols...)
	if err != nil {
		return nil, err
	}
	return &domain.Correlation{
		Variables: m.Variables,
		Values:    domain.Matrix(m.Values),
		Pairs:     m.Pairs,
		Warnings:  warnings,
	}, nil
}

// Describe profiles one variable and tests it for stationarity. The
// variable is read from the requested frequency's sheet, else from its
// catalog frequency, else from the monthly frame.
func (s *AnalysisService) Describe(ctx context.Context, q api.DescribeQuery) (*domain.Description, error) {
	start, end, err := parseWindow(q.Start, q.End, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	snap := s.store.Current()
	col := snap.Catalog().Resolve(q.Var)

	frame := snap.Monthly()
	switch entry, ok := snap.Catalog().Lookup(q.Var); {
	case q.Frequency != "":
		f, err := catalog.ParseFrequency(q.Frequency)
		if err != nil {
			return nil, err
		}
		if frame, err = snap.Frequency(f); err != nil {
			return nil, err
		}
	case ok && entry.Indicator != nil:
		if t, err := snap.Frequency(entry.Indicator.Frequency); err == nil && t.Has(col) {
			frame = t
		}
	}

	values, ok := frame.FilterRange(start, end).Column(col)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrVariableNotFound, q.Var, frame.Name())
	}
	sum, err := analysis.Describe(col, values)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", col, err)
	}

	desc := &domain.Description{
		Name:    sum.Name,
		Source:  frame.Name(),
		Count:   sum.Count,
		Missing: sum.Missing,
		Mean:    domain.Number(sum.Mean),
		Std:     domain.Number(sum.Std),
		Min:     domain.Number(sum.Min),
		Q1:      domain.Number(sum.Q1),
		Median:  domain.Number(sum.Median),
		Q3:      domain.Number(sum.Q3),
		Max:     domain.Number(sum.Max),
	}
	if adf := analysis.ADF(dense(values)); adf != nil {
		desc.Stationarity = &domain.Stationarity{
			Statistic:      domain.Number(adf.Statistic),
			PValue:         domain.Number(adf.PValue),
			Lags:           adf.Lags,
			Observations:   adf.Observations,
			CriticalValues: adf.CriticalValues,
			Stationary:     adf.Stationary,
		}
	}
	return desc, nil
}

func dense(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !series.Missing(v) {
			out = append(out, v)
		}
	}
	return out
}

func regressionResponse(r *analysis.Report, summary string) *domain.Regression {
	out := &domain.Regression{
		Name:         r.Name,
		Title:        r.Title,
		Dependent:    r.Dependent,
		Variables:    r.Variables,
		Observations: r.Observations,
		Start:        r.Start,
		End:          r.End,
		Coefficients: domain.Numbers(r.Coefficients),
		R2:           domain.Number(r.R2),
		AdjR2:        domain.Number(r.AdjR2),
		FStat:        domain.Number(r.FStat),
		FPValue:      domain.Number(r.FPValue),
		DurbinWatson: domain.Number(r.DurbinWatson),
		Summary:      summary,
	}
	for _, inf := range r.Inference {
		out.Inference = append(out.Inference, domain.Inference{
			CovType: string(inf.CovType),
			MaxLags: inf.MaxLags,
			StdErr:  domain.Numbers(inf.StdErr),
			TStat:   domain.Numbers(inf.TStat),
			PValue:  domain.Numbers(inf.PValue),
		})
	}
	for _, v := range r.VIF {
		out.VIF = append(out.VIF, domain.VIF{Variable: v.Variable, VIF: domain.Number(v.VIF)})
	}
	if r.LjungBox != nil {
		out.LjungBox = &domain.LjungBox{
			Statistic: domain.Number(r.LjungBox.Statistic),
			PValue:    domain.Number(r.LjungBox.PValue),
			Lags:      r.LjungBox.Lags,
		}
	}
	for _, c := range r.Standardized {
		out.Standardized = append(out.Standardized, domain.Coefficient{Name: c.Name, Value: domain.Number(c.Value)})
	}
	return out
}
