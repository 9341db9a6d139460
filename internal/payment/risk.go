package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/geo"
)

// RiskAssessor classifies a checkout before gateway selection.
type RiskAssessor interface {
	Assess(ctx context.Context, rc RoutingContext) (RiskLevel, error)
}

// ThresholdRiskAssessor grades risk purely on order size and destination.
type ThresholdRiskAssessor struct {
	MediumAbove decimal.Decimal
	HighAbove   decimal.Decimal
	HomeCountry string
}

// DefaultRiskAssessor mirrors the storefront heuristic: large orders are
// medium risk, very large orders leaving the home market are high risk.
func DefaultRiskAssessor() ThresholdRiskAssessor {
	return ThresholdRiskAssessor{
		MediumAbove: decimal.NewFromInt(5000),
		HighAbove:   decimal.NewFromInt(10000),
		HomeCountry: "SA",
	}
}

// Assess implements RiskAssessor.
func (a ThresholdRiskAssessor) Assess(_ context.Context, rc RoutingContext) (RiskLevel, error) {
	if rc.OrderAmount.GreaterThan(a.HighAbove) && !geo.Is(rc.Country, a.HomeCountry) {
		return RiskHigh, nil
	}
	if rc.OrderAmount.GreaterThan(a.MediumAbove) {
		return RiskMedium, nil
	}
	return RiskLow, nil
}
