package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"budgetcoach/pkg/budget"
)

// analyzePayload keeps every field raw: the bundled page posts input values
// as strings while API clients tend to send numbers.
type analyzePayload struct {
	Income        json.RawMessage `json:"income"`
	Fixed         json.RawMessage `json:"fixed"`
	Debt          json.RawMessage `json:"debt"`
	Rate          json.RawMessage `json:"rate"`
	Savings       json.RawMessage `json:"savings"`
	Household     json.RawMessage `json:"household"`
	TransportPred json.RawMessage `json:"transport_pred"`
	FoodHist      json.RawMessage `json:"food_hist"`
	MiscHist      json.RawMessage `json:"misc_hist"`
	Goal          json.RawMessage `json:"goal"`
}

type numberField struct {
	name string
	raw  json.RawMessage
	dst  *float64
}

func (p analyzePayload) toRequest() (budget.Request, error) {
	var req budget.Request
	s := &req.Snapshot

	for _, f := range []numberField{
		{name: "income", raw: p.Income, dst: &s.Income},
		{name: "fixed", raw: p.Fixed, dst: &s.FixedCosts},
		{name: "debt", raw: p.Debt, dst: &s.Debt},
		{name: "rate", raw: p.Rate, dst: &s.InterestRate},
		{name: "savings", raw: p.Savings, dst: &s.Savings},
		{name: "household", raw: p.Household, dst: &s.HouseholdSize},
		{name: "transport_pred", raw: p.TransportPred, dst: &s.TransportPrediction},
	} {
		value, err := parseNumber(f.name, f.raw)
		if err != nil {
			return budget.Request{}, err
		}
		*f.dst = value
	}

	var err error
	if req.FoodHistory, err = parseHistory("food_hist", p.FoodHist); err != nil {
		return budget.Request{}, err
	}
	if req.MiscHistory, err = parseHistory("misc_hist", p.MiscHist); err != nil {
		return budget.Request{}, err
	}
	if s.Goal, err = parseText("goal", p.Goal); err != nil {
		return budget.Request{}, err
	}
	return req, nil
}

// isMissing treats an absent key and an explicit null alike.
func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func missingField(name string) error {
	return budget.NewError(budget.ErrCodeValidation, "missing required field: "+name)
}

// parseNumber accepts a JSON number or a string holding one.
func parseNumber(name string, raw json.RawMessage) (float64, error) {
	if isMissing(raw) {
		return 0, missingField(name)
	}

	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		var text string
		if json.Unmarshal(raw, &text) != nil {
			return 0, budget.NewError(budget.ErrCodeValidation, fmt.Sprintf("invalid number for field %s: %s", name, raw))
		}
		value, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0, budget.NewError(budget.ErrCodeValidation, fmt.Sprintf("invalid number for field %s: %q", name, text))
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, budget.NewError(budget.ErrCodeValidation, fmt.Sprintf("invalid number for field %s: not finite", name))
	}
	return value, nil
}

func parseHistory(name string, raw json.RawMessage) (string, error) {
	if isMissing(raw) {
		return "", missingField(name)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", budget.NewError(budget.ErrCodeValidation, fmt.Sprintf("field %s must be a comma separated string", name))
	}
	return text, nil
}

// parseText returns strings as-is and any other JSON value as its literal text.
func parseText(name string, raw json.RawMessage) (string, error) {
	if isMissing(raw) {
		return "", missingField(name)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	return string(bytes.TrimSpace(raw)), nil
}
