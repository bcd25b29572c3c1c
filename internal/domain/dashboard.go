package domain

import "time"

// TypeBreakdown is the share of total weight logged under one waste type.
type TypeBreakdown struct {
	Type       WasteType
	Quantity   int
	Weight     float64
	Percentage float64
}

// UserRanking is a user's recycled weight.
type UserRanking struct {
	UserID        string
	Name          string
	TotalRecycled float64
}

// Forecast is the projected total weight for the month after the last observed one.
type Forecast struct {
	PredictedAmount float64
	Confidence      float64
	Month           string
	MonthsObserved  int
}

// Dashboard is the computed view over a record set.
type Dashboard struct {
	TotalWaste    float64
	WasteRecycled float64
	RecyclingRate float64
	TypeBreakdown []TypeBreakdown
	UserRankings  []UserRanking
	Forecast      Forecast
	RecordCount   int
	From          *time.Time
	To            *time.Time
	GeneratedAt   time.Time
}
