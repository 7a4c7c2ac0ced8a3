package analytics

import (
	"github.com/hugh/dealflow/internal/database/models"
	"github.com/shopspring/decimal"
)

// StatusCount splits a count across the four deal statuses.
type StatusCount struct {
	New        int64 `json:"new"`
	InProgress int64 `json:"in_progress"`
	Won        int64 `json:"won"`
	Lost       int64 `json:"lost"`
}

func (c *StatusCount) add(status models.DealStatus, n int64) {
	switch status {
	case models.DealStatusNew:
		c.New += n
	case models.DealStatusInProgress:
		c.InProgress += n
	case models.DealStatusWon:
		c.Won += n
	case models.DealStatusLost:
		c.Lost += n
	}
}

func (c StatusCount) Total() int64 {
	return c.New + c.InProgress + c.Won + c.Lost
}

// StatusAmount splits an amount sum across the four deal statuses.
type StatusAmount struct {
	New        decimal.Decimal `json:"new"`
	InProgress decimal.Decimal `json:"in_progress"`
	Won        decimal.Decimal `json:"won"`
	Lost       decimal.Decimal `json:"lost"`
}

func (a *StatusAmount) add(status models.DealStatus, amount decimal.Decimal) {
	switch status {
	case models.DealStatusNew:
		a.New = a.New.Add(amount)
	case models.DealStatusInProgress:
		a.InProgress = a.InProgress.Add(amount)
	case models.DealStatusWon:
		a.Won = a.Won.Add(amount)
	case models.DealStatusLost:
		a.Lost = a.Lost.Add(amount)
	}
}

// Summary is the per-organization deal overview. AvgWonAmount is nil when the
// organization has no won deals; nil means undefined, not zero.
type Summary struct {
	TotalDeals         int64            `json:"total_deals"`
	DealsByStatus      StatusCount      `json:"deals_by_status"`
	AmountsByStatus    StatusAmount     `json:"amounts_by_status"`
	AvgWonAmount       *decimal.Decimal `json:"avg_won_amount"`
	NewDealsLast30Days int64            `json:"new_deals_last_30_days"`
}

// StageStats is one funnel step. Total counts every deal at this stage or
// any later stage.
type StageStats struct {
	Stage    models.DealStage `json:"stage"`
	Total    int64            `json:"total"`
	ByStatus StatusCount      `json:"by_status"`
}

type ConversionRate struct {
	FromStage   models.DealStage `json:"from_stage"`
	ToStage     models.DealStage `json:"to_stage"`
	RatePercent float64          `json:"rate_percent"`
}

type Funnel struct {
	Stages          []StageStats     `json:"stages"`
	ConversionRates []ConversionRate `json:"conversion_rates"`
}

// Bucket is the count and amount sum of an organization's deals sharing one
// (stage, status) pair.
type Bucket struct {
	Stage  models.DealStage
	Status models.DealStatus
	Count  int64
	Amount decimal.Decimal
}
