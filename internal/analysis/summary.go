package analysis

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
)

// WriteSummary prints a plain-text regression table.
func (r *Report) WriteSummary(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", r.Title, strings.Repeat("=", len(r.Title)))
	fmt.Fprintf(&b, "Dep. variable: %s\n", r.Dependent)
	fmt.Fprintf(&b, "Observations:  %d (%s to %s)\n", r.Observations, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "R-squared:     %.4f   Adj. R-squared: %.4f\n", r.R2, r.AdjR2)
	fmt.Fprintf(&b, "F-statistic:   %.4f   Prob (F):       %.4g\n", r.FStat, r.FPValue)
	fmt.Fprintf(&b, "Durbin-Watson: %.4f\n", r.DurbinWatson)
	if r.LjungBox != nil {
		fmt.Fprintf(&b, "Ljung-Box(%d): %.4f   p=%.4g\n", r.LjungBox.Lags, r.LjungBox.Statistic, r.LjungBox.PValue)
	}

	for _, inf := range r.Inference {
		label := string(inf.CovType)
		if inf.CovType == HAC {
			label = fmt.Sprintf("%s (maxlags=%d)", inf.CovType, inf.MaxLags)
		}
		fmt.Fprintf(&b, "\nCovariance: %s\n", label)
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "\tcoef\tstd err\tt\tP>|t|\t")
		for i, name := range r.Variables {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.3f\t%.3f\t\n", name, r.Coefficients[i], inf.StdErr[i], inf.TStat[i], inf.PValue[i])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.VIF) > 0 {
		b.WriteString("\nVariance inflation factors\n")
		for _, v := range r.VIF {
			fmt.Fprintf(&b, "  %-28s %s\n", v.Variable, formatFloat(v.VIF))
		}
	}
	if len(r.Standardized) > 0 {
		b.WriteString("\nStandardized betas\n")
		for _, c := range r.Standardized {
			fmt.Fprintf(&b, "  %-28s %.4f\n", c.Name, c.Value)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsNaN(v):
		return "nan"
	}
	return fmt.Sprintf("%.4f", v)
}
