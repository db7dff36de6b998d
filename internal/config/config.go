package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gridfan/pitwall/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                         string
	ServiceName                    string
	ServiceVersion                 string
	HTTPAddr                       string
	ReadTimeout                    time.Duration
	WriteTimeout                   time.Duration
	CORSAllowedOrigins             []string
	CacheEnabled                   bool
	CacheTTL                       time.Duration
	PprofEnabled                   bool
	PprofAddr                      string
	UptraceEnabled                 bool
	UptraceDSN                     string
	PyroscopeEnabled               bool
	PyroscopeServerAddress         string
	PyroscopeAppName               string
	PyroscopeAuthToken             string
	PyroscopeBasicAuthUser         string
	PyroscopeBasicAuthPassword     string
	PyroscopeUploadRate            time.Duration
	OpenF1BaseURL                  string
	OpenF1Timeout                  time.Duration
	OpenF1CircuitEnabled           bool
	OpenF1CircuitFailureCount      int
	OpenF1CircuitOpenTimeout       time.Duration
	OpenF1CircuitHalfOpenMaxReq    int
	TargetSeasonYear               int
	HistorySeasonYear              int
	FallbackSessionKey             int64
	HistoryLimit                   int
	PredictorBaseURL               string
	PredictorTimeout               time.Duration
	PredictorCircuitEnabled        bool
	PredictorCircuitFailureCount   int
	PredictorCircuitOpenTimeout    time.Duration
	PredictorCircuitHalfOpenMaxReq int
	LogLevel                       logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	openF1Timeout, err := time.ParseDuration(getEnv("OPENF1_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_TIMEOUT: %w", err)
	}
	if openF1Timeout <= 0 {
		return Config{}, fmt.Errorf("OPENF1_TIMEOUT must be > 0")
	}
	openF1CircuitEnabled, err := strconv.ParseBool(getEnv("OPENF1_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_ENABLED: %w", err)
	}
	openF1CircuitFailureCount, err := getEnvAsInt("OPENF1_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if openF1CircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("OPENF1_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	openF1CircuitOpenTimeout, err := time.ParseDuration(getEnv("OPENF1_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if openF1CircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("OPENF1_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	openF1CircuitHalfOpenMaxReq, err := getEnvAsInt("OPENF1_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if openF1CircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("OPENF1_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	targetSeasonYear, err := getEnvAsInt("OPENF1_TARGET_YEAR", 2025)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_TARGET_YEAR: %w", err)
	}
	if targetSeasonYear < 2018 {
		return Config{}, fmt.Errorf("OPENF1_TARGET_YEAR must be >= 2018")
	}
	historySeasonYear, err := getEnvAsInt("OPENF1_HISTORY_YEAR", 2024)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_HISTORY_YEAR: %w", err)
	}
	if historySeasonYear < 2018 {
		return Config{}, fmt.Errorf("OPENF1_HISTORY_YEAR must be >= 2018")
	}
	fallbackSessionKey, err := getEnvAsInt64("OPENF1_FALLBACK_SESSION_KEY", 9472)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_FALLBACK_SESSION_KEY: %w", err)
	}
	if fallbackSessionKey <= 0 {
		return Config{}, fmt.Errorf("OPENF1_FALLBACK_SESSION_KEY must be > 0")
	}
	historyLimit, err := getEnvAsInt("HISTORY_RACE_LIMIT", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse HISTORY_RACE_LIMIT: %w", err)
	}
	if historyLimit < 1 {
		return Config{}, fmt.Errorf("HISTORY_RACE_LIMIT must be >= 1")
	}

	predictorTimeout, err := time.ParseDuration(getEnv("PREDICTOR_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTOR_TIMEOUT: %w", err)
	}
	if predictorTimeout <= 0 {
		return Config{}, fmt.Errorf("PREDICTOR_TIMEOUT must be > 0")
	}
	predictorCircuitEnabled, err := strconv.ParseBool(getEnv("PREDICTOR_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTOR_CIRCUIT_ENABLED: %w", err)
	}
	predictorCircuitFailureCount, err := getEnvAsInt("PREDICTOR_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTOR_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if predictorCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("PREDICTOR_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	predictorCircuitOpenTimeout, err := time.ParseDuration(getEnv("PREDICTOR_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTOR_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if predictorCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("PREDICTOR_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	predictorCircuitHalfOpenMaxReq, err := getEnvAsInt("PREDICTOR_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTOR_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if predictorCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("PREDICTOR_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                         appEnv,
		ServiceName:                    getEnv("APP_SERVICE_NAME", "pitwall-api"),
		ServiceVersion:                 getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                    readTimeout,
		WriteTimeout:                   writeTimeout,
		CORSAllowedOrigins:             splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		CacheEnabled:                   cacheEnabled,
		CacheTTL:                       cacheTTL,
		PprofEnabled:                   pprofEnabled,
		PprofAddr:                      pprofAddr,
		UptraceEnabled:                 uptraceEnabled,
		UptraceDSN:                     uptraceDSN,
		PyroscopeEnabled:               pyroscopeEnabled,
		PyroscopeServerAddress:         pyroscopeServerAddress,
		PyroscopeAuthToken:             strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:         strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:            pyroscopeUploadRate,
		OpenF1BaseURL:                  strings.TrimSpace(getEnv("OPENF1_BASE_URL", "https://api.openf1.org/v1")),
		OpenF1Timeout:                  openF1Timeout,
		OpenF1CircuitEnabled:           openF1CircuitEnabled,
		OpenF1CircuitFailureCount:      openF1CircuitFailureCount,
		OpenF1CircuitOpenTimeout:       openF1CircuitOpenTimeout,
		OpenF1CircuitHalfOpenMaxReq:    openF1CircuitHalfOpenMaxReq,
		TargetSeasonYear:               targetSeasonYear,
		HistorySeasonYear:              historySeasonYear,
		FallbackSessionKey:             fallbackSessionKey,
		HistoryLimit:                   historyLimit,
		PredictorBaseURL:               strings.TrimSpace(getEnv("PREDICTOR_BASE_URL", "http://localhost:8000")),
		PredictorTimeout:               predictorTimeout,
		PredictorCircuitEnabled:        predictorCircuitEnabled,
		PredictorCircuitFailureCount:   predictorCircuitFailureCount,
		PredictorCircuitOpenTimeout:    predictorCircuitOpenTimeout,
		PredictorCircuitHalfOpenMaxReq: predictorCircuitHalfOpenMaxReq,
		LogLevel:                       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.OpenF1BaseURL == "" {
		return Config{}, fmt.Errorf("OPENF1_BASE_URL cannot be empty")
	}
	if cfg.PredictorBaseURL == "" {
		return Config{}, fmt.Errorf("PREDICTOR_BASE_URL cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
