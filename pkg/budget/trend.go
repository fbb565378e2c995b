package budget

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TrendStatus labels the direction of a spending history.
type TrendStatus string

const (
	StatusRising  TrendStatus = "rising"
	StatusFalling TrendStatus = "falling"
	StatusStable  TrendStatus = "stable"
	StatusError   TrendStatus = "error"
	// StatusInsufficientData is returned for histories shorter than two
	// points. Its capitalization differs from StatusStable on purpose; clients
	// match on the literal.
	StatusInsufficientData TrendStatus = "Stable"
)

// Slope thresholds, in currency units per period.
const (
	risingSlopeThreshold  = 15.0
	fallingSlopeThreshold = -15.0
	minTrendPoints        = 2
)

// TrendResult is the forecast for the next period of one spending category.
type TrendResult struct {
	Prediction float64     `json:"val"`
	Slope      float64     `json:"-"`
	Status     TrendStatus `json:"status"`
}

var errEmptyToken = errors.New("empty token")

// ParseHistory splits a comma separated history into numbers. Blank tokens
// are skipped; any other token that is not a finite number is an error.
func ParseHistory(history string) ([]float64, error) {
	parts := strings.Split(history, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		value, err := parseFiniteFloat(token)
		if err != nil {
			return nil, fmt.Errorf("parse history token %q: %w", token, err)
		}
		values = append(values, value)
	}
	return values, nil
}

// AnalyzeTrend fits a least-squares line through the history (value against
// 0-based position) and forecasts the next period. It never fails: bad input
// yields a zero result with StatusError.
func AnalyzeTrend(history string) (result TrendResult) {
	defer func() {
		if recover() != nil {
			result = TrendResult{Status: StatusError}
		}
	}()

	values, err := ParseHistory(history)
	if err != nil {
		return TrendResult{Status: StatusError}
	}
	if len(values) < minTrendPoints {
		return TrendResult{Status: StatusInsufficientData}
	}

	slope, intercept := fitLine(values)
	prediction := intercept + slope*float64(len(values))
	if math.IsNaN(prediction) || math.IsInf(prediction, 0) || math.IsNaN(slope) {
		return TrendResult{Status: StatusError}
	}

	return TrendResult{
		Prediction: math.Max(0, prediction),
		Slope:      slope,
		Status:     classifySlope(slope),
	}
}

// fitLine returns the ordinary least-squares slope and intercept of values
// against their indexes 0..n-1.
func fitLine(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	meanX := (n - 1) / 2

	var sumY float64
	for _, v := range values {
		sumY += v
	}
	meanY := sumY / n

	var sxy, sxx float64
	for i, v := range values {
		dx := float64(i) - meanX
		sxy += dx * (v - meanY)
		sxx += dx * dx
	}
	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return slope, intercept
}

func classifySlope(slope float64) TrendStatus {
	switch {
	case slope > risingSlopeThreshold:
		return StatusRising
	case slope < fallingSlopeThreshold:
		return StatusFalling
	default:
		return StatusStable
	}
}

func parseFiniteFloat(token string) (float64, error) {
	if token == "" {
		return 0, errEmptyToken
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return value, nil
}
