package estimates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/money"
)

// Stats is the dashboard summary for one year.
type Stats struct {
	Year        int
	TotalNet    money.Monies
	Open        int64
	Pending     int64
	Accepted    int64
	SuccessRate decimal.Decimal
}

// StatsService reports aggregate figures over all estimates.
type StatsService interface {
	TotalNet(ctx context.Context, year int) (money.Monies, error)
	PendingCount(ctx context.Context) (int64, error)
	SuccessRate(ctx context.Context) (decimal.Decimal, error)
	Summary(ctx context.Context, year int) (Stats, error)
}

type statsService struct {
	repo Repository
}

func NewStatsService(repo Repository) (StatsService, error) {
	if repo == nil {
		return nil, fmt.Errorf("estimates repository required")
	}
	return &statsService{repo: repo}, nil
}

// TotalNet is the net value of accepted estimates dated in year, without
// optional positions.
func (s *statsService) TotalNet(ctx context.Context, year int) (money.Monies, error) {
	from, to := yearBounds(year)
	sums, err := s.repo.SumPositions(ctx, enums.EstimateStatusAccepted, from, to)
	if err != nil {
		return nil, classify(err)
	}
	prices := make(money.Prices, 0, len(sums))
	for _, sum := range sums {
		prices = prices.Add(money.NewPrice(sum.Total.Round(0).IntPart(), sum.Currency, sum.Type, sum.Rate))
	}
	return prices.Net(), nil
}

// PendingCount counts estimates sent and awaiting an answer.
func (s *statsService) PendingCount(ctx context.Context) (int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return 0, classify(err)
	}
	return counts[enums.EstimateStatusSent], nil
}

func (s *statsService) SuccessRate(ctx context.Context) (decimal.Decimal, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return successRate(counts), nil
}

func (s *statsService) Summary(ctx context.Context, year int) (Stats, error) {
	total, err := s.TotalNet(ctx, year)
	if err != nil {
		return Stats{}, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Stats{}, classify(err)
	}
	return Stats{
		Year:        year,
		TotalNet:    total,
		Open:        counts[enums.EstimateStatusCreated],
		Pending:     counts[enums.EstimateStatusSent],
		Accepted:    counts[enums.EstimateStatusAccepted],
		SuccessRate: successRate(counts),
	}, nil
}

// successRate is accepted / (accepted + rejected + no-response) in percent,
// rounded to two places. Without any answered estimate the rate is 100.
func successRate(counts map[enums.EstimateStatus]int64) decimal.Decimal {
	accepted := counts[enums.EstimateStatusAccepted]
	answered := accepted + counts[enums.EstimateStatusRejected] + counts[enums.EstimateStatusNoResponse]
	if answered == 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(accepted).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(answered)).
		Round(2)
}
