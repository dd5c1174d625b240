package series_test

import (
	"fmt"

	"macrodash/internal/series"
)

func ExamplePercentChange() {
	cpi := []float64{100, 101, 102.02}
	for _, v := range series.PercentChange(cpi, series.LagMoM) {
		fmt.Printf("%.4f\n", v)
	}
	// Output:
	// NaN
	// 1.0000
	// 1.0099
}

func ExampleRebase() {
	rebased, err := series.Rebase([]float64{200, 220})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(rebased)
	// Output: [100 110]
}
