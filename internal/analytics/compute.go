package analytics

import (
	"math"

	"github.com/hugh/dealflow/internal/database/models"
	"github.com/shopspring/decimal"
)

// BuildSummary folds (stage, status) buckets into a Summary.
func BuildSummary(buckets []Bucket, newLast30Days int64) Summary {
	s := Summary{
		AmountsByStatus: StatusAmount{
			New:        decimal.Zero,
			InProgress: decimal.Zero,
			Won:        decimal.Zero,
			Lost:       decimal.Zero,
		},
		NewDealsLast30Days: newLast30Days,
	}

	for _, b := range buckets {
		s.DealsByStatus.add(b.Status, b.Count)
		s.AmountsByStatus.add(b.Status, b.Amount)
	}
	s.TotalDeals = s.DealsByStatus.Total()

	if s.DealsByStatus.Won > 0 {
		avg := s.AmountsByStatus.Won.Div(decimal.NewFromInt(s.DealsByStatus.Won))
		s.AvgWonAmount = &avg
	}

	return s
}

// BuildFunnel folds (stage, status) buckets into a cumulative funnel over the
// pipeline, with one conversion rate per consecutive stage pair.
func BuildFunnel(buckets []Bucket) Funnel {
	pipeline := models.Pipeline()

	exact := make([]StatusCount, len(pipeline))
	for _, b := range buckets {
		if !b.Stage.Valid() {
			continue
		}
		exact[b.Stage.Index()].add(b.Status, b.Count)
	}

	stages := make([]StageStats, len(pipeline))
	var running StatusCount
	for i := len(pipeline) - 1; i >= 0; i-- {
		running.New += exact[i].New
		running.InProgress += exact[i].InProgress
		running.Won += exact[i].Won
		running.Lost += exact[i].Lost
		stages[i] = StageStats{
			Stage:    pipeline[i],
			Total:    running.Total(),
			ByStatus: running,
		}
	}

	rates := make([]ConversionRate, 0, len(pipeline)-1)
	for i := 0; i+1 < len(pipeline); i++ {
		rates = append(rates, ConversionRate{
			FromStage:   pipeline[i],
			ToStage:     pipeline[i+1],
			RatePercent: conversionRate(stages[i].Total, stages[i+1].Total),
		})
	}

	return Funnel{Stages: stages, ConversionRates: rates}
}

// conversionRate is 100*to/from rounded to two decimals, and 0 when from is 0.
func conversionRate(from, to int64) float64 {
	if from == 0 {
		return 0.0
	}
	rate := float64(to) / float64(from) * 100.0
	return math.Round(rate*100) / 100
}
