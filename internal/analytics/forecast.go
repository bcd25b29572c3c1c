package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/reciclamais/waste-service/internal/domain"
)

const monthLayout = "2006-01"

// MonthlyTotal is the summed weight of one calendar month.
type MonthlyTotal struct {
	Month  time.Time
	Weight float64
}

// MonthlyTotals buckets records by the first day of their month, oldest first.
func MonthlyTotals(records []domain.Waste) []MonthlyTotal {
	buckets := make(map[time.Time]float64)
	for _, r := range records {
		buckets[domain.MonthStart(r.Date)] += r.Weight
	}

	result := make([]MonthlyTotal, 0, len(buckets))
	for month, weight := range buckets {
		result = append(result, MonthlyTotal{Month: month, Weight: weight})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month.Before(result[j].Month)
	})
	return result
}

// PredictNextMonth fits a least-squares line through the monthly totals,
// indexed 0..n-1, and projects index n. Confidence is the R² of the fit.
// Fewer than two records or two distinct months yields a zero forecast.
func PredictNextMonth(records []domain.Waste) domain.Forecast {
	if len(records) < 2 {
		return domain.Forecast{}
	}
	months := MonthlyTotals(records)
	if len(months) < 2 {
		return domain.Forecast{MonthsObserved: len(months)}
	}

	xs := make(stats.Float64Data, len(months))
	ys := make(stats.Float64Data, len(months))
	for i, m := range months {
		xs[i] = float64(i)
		ys[i] = m.Weight
	}

	slope, intercept, ok := fitLine(xs, ys)
	if !ok {
		return domain.Forecast{MonthsObserved: len(months)}
	}
	predicted := intercept + slope*float64(len(months))

	var confidence float64
	if r, err := stats.Correlation(xs, ys); err == nil {
		confidence = r * r
	}

	return domain.Forecast{
		PredictedAmount: clampNonNegative(predicted),
		Confidence:      math.Min(clampNonNegative(confidence), 1),
		Month:           months[len(months)-1].Month.AddDate(0, 1, 0).Format(monthLayout),
		MonthsObserved:  len(months),
	}
}

func fitLine(xs, ys stats.Float64Data) (slope, intercept float64, ok bool) {
	meanX, err := stats.Mean(xs)
	if err != nil {
		return 0, 0, false
	}
	meanY, err := stats.Mean(ys)
	if err != nil {
		return 0, 0, false
	}
	varX, err := stats.PopulationVariance(xs)
	if err != nil || varX == 0 {
		return 0, 0, false
	}
	cov, err := stats.CovariancePopulation(xs, ys)
	if err != nil {
		return 0, 0, false
	}
	slope = cov / varX
	return slope, meanY - slope*meanX, true
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
