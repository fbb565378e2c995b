package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"budgetcoach/pkg/advice"
)

const (
	defaultPort          = 5000
	defaultHost          = "0.0.0.0"
	defaultLogDir        = "logs"
	defaultAdviceTimeout = 30 * time.Second
)

const (
	envPort          = "PORT"
	envProvider      = "BUDGET_COACH_PROVIDER"
	envModel         = "BUDGET_COACH_MODEL"
	envBaseURL       = "BUDGET_COACH_BASE_URL"
	envAdviceTimeout = "BUDGET_COACH_ADVICE_TIMEOUT"
	envCacheTTL      = "BUDGET_COACH_ADVICE_CACHE_TTL"
	envLogDir        = "BUDGET_COACH_LOG_DIR"
)

// Settings is the process configuration, read once at startup.
type Settings struct {
	Provider      string
	CredentialEnv string
	APIKey        string
	Model         string
	BaseURL       string
	AdviceTimeout time.Duration
	CacheTTL      time.Duration
	Host          string
	LogDir        string
}

var runtimePort int

// SetRuntimePort overrides the listen port; non-positive values are ignored.
func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

// GetRuntimePort returns the flag override, then PORT, then 5000.
func GetRuntimePort() int {
	if runtimePort > 0 {
		return runtimePort
	}
	if value := strings.TrimSpace(os.Getenv(envPort)); value != "" {
		if port, err := strconv.Atoi(value); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Load reads Settings from the environment. A missing API key is not an
// error here; it surfaces on every analysis request instead.
func Load() (Settings, error) {
	provider := advice.NormalizeProvider(os.Getenv(envProvider))
	credentialEnv, err := advice.CredentialEnv(provider)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", envProvider, err)
	}

	adviceTimeout, err := durationEnv(envAdviceTimeout, defaultAdviceTimeout)
	if err != nil {
		return Settings{}, err
	}
	cacheTTL, err := durationEnv(envCacheTTL, 0)
	if err != nil {
		return Settings{}, err
	}

	model := strings.TrimSpace(os.Getenv(envModel))
	if model == "" {
		model = advice.DefaultModel(provider)
	}

	return Settings{
		Provider:      provider,
		CredentialEnv: credentialEnv,
		APIKey:        strings.TrimSpace(os.Getenv(credentialEnv)),
		Model:         model,
		BaseURL:       strings.TrimSpace(os.Getenv(envBaseURL)),
		AdviceTimeout: adviceTimeout,
		CacheTTL:      cacheTTL,
		Host:          defaultHost,
		LogDir:        stringEnv(envLogDir, defaultLogDir),
	}, nil
}

func stringEnv(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return d, nil
}
