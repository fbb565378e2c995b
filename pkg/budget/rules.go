package budget

import (
	"fmt"
	"math"
)

// Strategy is the recommended financial focus for a snapshot.
type Strategy string

const (
	StrategyDebtAvalanche      Strategy = "DEBT AVALANCHE"
	StrategySecurityFirst      Strategy = "SECURITY FIRST"
	StrategyWealthAcceleration Strategy = "WEALTH ACCELERATION"
	StrategyOptimization       Strategy = "OPTIMIZATION"
)

// Decision thresholds.
const (
	highDebtAmount        = 2000.0
	highInterestRate      = 15.0
	minRunwayMonths       = 3.0
	wealthSavingsRatePct  = 20.0
	singlePersonHousehold = 1.0
)

// Snapshot is the validated financial picture submitted with one request.
type Snapshot struct {
	Income              float64
	FixedCosts          float64
	Debt                float64
	InterestRate        float64
	Savings             float64
	HouseholdSize       float64
	TransportPrediction float64
	Goal                string
}

// Metrics are the cash-flow figures derived from a snapshot and its trends.
type Metrics struct {
	TotalVariableSpend float64
	TotalSpend         float64
	CashFlow           float64
	SavingsRate        float64
	RunwayMonths       float64
}

// Decision is the strategy and offer picked for a snapshot.
type Decision struct {
	Strategy Strategy
	OfferKey OfferKey
	Offer    Offer
}

// ComputeMetrics combines the snapshot with the food and misc forecasts.
func ComputeMetrics(s Snapshot, food, misc TrendResult) Metrics {
	variable := food.Prediction + s.TransportPrediction + misc.Prediction
	total := s.FixedCosts + variable
	cashFlow := s.Income - total

	m := Metrics{
		TotalVariableSpend: variable,
		TotalSpend:         total,
		CashFlow:           cashFlow,
	}
	if s.Income > 0 {
		m.SavingsRate = cashFlow / s.Income * 100
	}
	if total > 0 {
		m.RunwayMonths = s.Savings / total
	}
	return m
}

// checkFinite reports the first metric that overflowed. Inputs are finite on
// their own, but extreme magnitudes can still overflow once combined.
func (m Metrics) checkFinite() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"total_variable_spend", m.TotalVariableSpend},
		{"total_spend", m.TotalSpend},
		{"cash_flow", m.CashFlow},
		{"savings_rate", m.SavingsRate},
		{"runway", m.RunwayMonths},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return NewError(ErrCodeValidation, fmt.Sprintf("input magnitudes overflow %s; use realistic amounts", f.name))
		}
	}
	return nil
}

// Decide walks the rule table in priority order; the first matching rule wins.
func Decide(s Snapshot, m Metrics) Decision {
	switch {
	case s.Debt > highDebtAmount && s.InterestRate > highInterestRate:
		return decision(StrategyDebtAvalanche, OfferDebt)
	case m.RunwayMonths < minRunwayMonths:
		if s.HouseholdSize > singlePersonHousehold {
			return decision(StrategySecurityFirst, OfferInsurance)
		}
		return decision(StrategySecurityFirst, OfferBudget)
	case m.SavingsRate > wealthSavingsRatePct:
		return decision(StrategyWealthAcceleration, OfferInvest)
	default:
		return decision(StrategyOptimization, OfferSavings)
	}
}

// ChartSeries returns the spending breakdown plotted by the web page:
// fixed, food, transport, misc and debt scaled down by ten.
func ChartSeries(s Snapshot, food, misc TrendResult) [5]float64 {
	return [5]float64{
		s.FixedCosts,
		food.Prediction,
		s.TransportPrediction,
		misc.Prediction,
		s.Debt / 10,
	}
}

func decision(strategy Strategy, key OfferKey) Decision {
	return Decision{Strategy: strategy, OfferKey: key, Offer: mustOffer(key)}
}
