package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultAdviceTimeout = 30 * time.Second
	defaultCredentialEnv = "GROQ_API_KEY"
)

// AdviceGenerator turns a prompt into freeform advice text.
type AdviceGenerator interface {
	GenerateAdvice(ctx context.Context, prompt string) (string, error)
}

// Options controls Advisor initialization.
type Options struct {
	// Generator is nil when no credential was configured at startup.
	Generator     AdviceGenerator
	CredentialEnv string
	Logger        *slog.Logger
	AdviceTimeout time.Duration
}

// Advisor runs the analysis pipeline. It holds no per-request state and is
// safe for concurrent use.
type Advisor struct {
	generator     AdviceGenerator
	credentialEnv string
	logger        *slog.Logger
	adviceTimeout time.Duration
	newID         func() string
}

// Request is one parsed analysis request.
type Request struct {
	Snapshot    Snapshot
	FoodHistory string
	MiscHistory string
}

// Trends holds the per-category forecasts returned to clients.
type Trends struct {
	Food TrendResult `json:"food"`
	Misc TrendResult `json:"misc"`
}

// Analysis is the response payload for one request.
type Analysis struct {
	ID          string     `json:"analysis_id"`
	CashFlow    float64    `json:"cash_flow"`
	SavingsRate float64    `json:"savings_rate"`
	Runway      float64    `json:"runway"`
	Strategy    Strategy   `json:"strategy"`
	Tool        Offer      `json:"tool"`
	Advice      string     `json:"ai_advice"`
	Trends      Trends     `json:"trends"`
	ChartData   [5]float64 `json:"chart_data"`
}

// NewAdvisor builds an Advisor from opts.
func NewAdvisor(opts Options) *Advisor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	credentialEnv := strings.TrimSpace(opts.CredentialEnv)
	if credentialEnv == "" {
		credentialEnv = defaultCredentialEnv
	}
	timeout := opts.AdviceTimeout
	if timeout <= 0 {
		timeout = defaultAdviceTimeout
	}
	return &Advisor{
		generator:     opts.Generator,
		credentialEnv: credentialEnv,
		logger:        logger,
		adviceTimeout: timeout,
		newID:         uuid.NewString,
	}
}

// Logger returns the advisor logger.
func (a *Advisor) Logger() *slog.Logger {
	return a.logger
}

// CheckConfigured reports a configuration error when no advice generator is
// available.
func (a *Advisor) CheckConfigured() error {
	if a.generator == nil {
		return NewError(ErrCodeConfiguration, fmt.Sprintf(
			"Server Configuration Error: API Key missing. Please set %s in environment variables.",
			a.credentialEnv,
		))
	}
	return nil
}

// Analyze forecasts both spending categories, applies the rule table and asks
// the generator for advice.
func (a *Advisor) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if err := a.CheckConfigured(); err != nil {
		return nil, err
	}

	food := AnalyzeTrend(req.FoodHistory)
	misc := AnalyzeTrend(req.MiscHistory)
	metrics := ComputeMetrics(req.Snapshot, food, misc)
	if err := metrics.checkFinite(); err != nil {
		return nil, err
	}
	decision := Decide(req.Snapshot, metrics)
	prompt := BuildPrompt(req.Snapshot, metrics, food, misc)

	id := a.newID()
	a.logger.Debug("budget analysis computed",
		"analysis_id", id,
		"food_status", food.Status,
		"misc_status", misc.Status,
		"cash_flow", metrics.CashFlow,
		"savings_rate", metrics.SavingsRate,
		"runway", metrics.RunwayMonths,
		"strategy", decision.Strategy,
		"offer", decision.OfferKey,
	)

	advice, err := a.generateAdvice(ctx, prompt)
	if err != nil {
		a.logger.Warn("advice generation failed", "analysis_id", id, "err", err)
		return nil, err
	}

	return &Analysis{
		ID:          id,
		CashFlow:    metrics.CashFlow,
		SavingsRate: metrics.SavingsRate,
		Runway:      metrics.RunwayMonths,
		Strategy:    decision.Strategy,
		Tool:        decision.Offer,
		Advice:      advice,
		Trends:      Trends{Food: food, Misc: misc},
		ChartData:   ChartSeries(req.Snapshot, food, misc),
	}, nil
}

func (a *Advisor) generateAdvice(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.adviceTimeout)
	defer cancel()

	start := time.Now()
	advice, err := a.generator.GenerateAdvice(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", WrapError(ErrCodeUpstream, fmt.Sprintf("advice generation timed out after %s", a.adviceTimeout), err)
		}
		return "", WrapError(ErrCodeUpstream, "advice generation failed", err)
	}
	a.logger.Debug("advice generated", "duration_ms", time.Since(start).Milliseconds(), "chars", len(advice))
	return advice, nil
}
