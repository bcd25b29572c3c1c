// Package analytics computes dashboard metrics and the next-month forecast
// from a snapshot of waste records. Every function is pure and never fails:
// empty or insufficient input produces zero values.
package analytics

import (
	"math"
	"sort"

	"github.com/reciclamais/waste-service/internal/domain"
)

// Summary bundles the aggregate metrics for one record set.
type Summary struct {
	TotalWeight    float64
	RecycledWeight float64
	RecyclingRate  float64
	ByType         []domain.TypeBreakdown
	Rankings       []domain.UserRanking
}

// Summarize computes every aggregate in one call.
func Summarize(records []domain.Waste) Summary {
	total := TotalWeight(records)
	recycled := RecycledWeight(records)
	return Summary{
		TotalWeight:    total,
		RecycledWeight: recycled,
		RecyclingRate:  rate(recycled, total),
		ByType:         DistributionByType(records),
		Rankings:       RankUsers(records),
	}
}

// TotalWeight sums the weight of all records.
func TotalWeight(records []domain.Waste) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Weight
	}
	return sum
}

// RecycledWeight sums the weight of records flagged as recycled.
func RecycledWeight(records []domain.Waste) float64 {
	var sum float64
	for _, r := range records {
		if r.Recycled {
			sum += r.Weight
		}
	}
	return sum
}

// RecyclingRate returns the recycled share of total weight as a percentage.
func RecyclingRate(records []domain.Waste) float64 {
	return rate(RecycledWeight(records), TotalWeight(records))
}

func rate(recycled, total float64) float64 {
	if total <= 0 {
		return 0
	}
	pct := recycled / total * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// DistributionByType groups records by type. Entries are ordered by rounded
// quantity descending, then by unrounded weight descending, then by type name.
func DistributionByType(records []domain.Waste) []domain.TypeBreakdown {
	weights := make(map[domain.WasteType]float64)
	var total float64
	for _, r := range records {
		weights[r.Type] += r.Weight
		total += r.Weight
	}

	result := make([]domain.TypeBreakdown, 0, len(weights))
	for wasteType, weight := range weights {
		var pct float64
		if total > 0 {
			pct = weight / total * 100
		}
		result = append(result, domain.TypeBreakdown{
			Type:       wasteType,
			Quantity:   int(math.Floor(weight + 0.5)),
			Weight:     weight,
			Percentage: pct,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Quantity != result[j].Quantity {
			return result[i].Quantity > result[j].Quantity
		}
		if result[i].Weight != result[j].Weight {
			return result[i].Weight > result[j].Weight
		}
		return result[i].Type < result[j].Type
	})
	return result
}

// RankUsers totals recycled weight per owner, highest first. Ties are broken
// by name, then by user id.
func RankUsers(records []domain.Waste) []domain.UserRanking {
	byUser := make(map[string]*domain.UserRanking)
	for _, r := range records {
		if !r.Recycled {
			continue
		}
		entry, ok := byUser[r.UserID]
		if !ok {
			entry = &domain.UserRanking{UserID: r.UserID, Name: r.UserName}
			byUser[r.UserID] = entry
		}
		entry.TotalRecycled += r.Weight
	}

	result := make([]domain.UserRanking, 0, len(byUser))
	for _, entry := range byUser {
		result = append(result, *entry)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TotalRecycled != b.TotalRecycled {
			return a.TotalRecycled > b.TotalRecycled
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.UserID < b.UserID
	})
	return result
}
