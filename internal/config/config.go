package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fieldside/matchlog/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	CacheTTL                time.Duration
	CORSAllowedOrigins      []string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	PprofEnabled            bool
	PprofAddr               string

	AuthBaseURL               string
	AuthIntrospectPath        string
	AuthTimeout               time.Duration
	AuthCircuitEnabled        bool
	AuthCircuitFailureCount   int
	AuthCircuitOpenTimeout    time.Duration
	AuthCircuitHalfOpenMaxReq int

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	SyncFeedEnabled             bool
	SyncFeedBaseURL             string
	SyncFeedToken               string
	SyncFeedTimeout             time.Duration
	SyncFeedCircuitEnabled      bool
	SyncFeedCircuitFailureCount int
	SyncFeedCircuitOpenTimeout  time.Duration
	SyncFeedCircuitHalfOpenMax  int

	LogLevel logging.Level
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
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
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

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5s"))
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
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	authTimeout, err := time.ParseDuration(getEnv("AUTH_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_TIMEOUT: %w", err)
	}
	authCircuitEnabled, err := strconv.ParseBool(getEnv("AUTH_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_CIRCUIT_ENABLED: %w", err)
	}
	authCircuitFailureCount, err := getEnvAsInt("AUTH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if authCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("AUTH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	authCircuitOpenTimeout, err := time.ParseDuration(getEnv("AUTH_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if authCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("AUTH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	authCircuitHalfOpenMaxReq, err := getEnvAsInt("AUTH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if authCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("AUTH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	syncFeedEnabled, err := strconv.ParseBool(getEnv("SYNC_FEED_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_FEED_ENABLED: %w", err)
	}
	syncFeedBaseURL := strings.TrimSpace(getEnv("SYNC_FEED_BASE_URL", ""))
	syncFeedToken := strings.TrimSpace(getEnv("SYNC_FEED_TOKEN", ""))
	if syncFeedEnabled {
		if syncFeedBaseURL == "" {
			return Config{}, fmt.Errorf("SYNC_FEED_BASE_URL is required when SYNC_FEED_ENABLED=true")
		}
		if syncFeedToken == "" {
			return Config{}, fmt.Errorf("SYNC_FEED_TOKEN is required when SYNC_FEED_ENABLED=true")
		}
	}
	syncFeedTimeout, err := time.ParseDuration(getEnv("SYNC_FEED_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_FEED_TIMEOUT: %w", err)
	}
	if syncFeedTimeout <= 0 {
		return Config{}, fmt.Errorf("SYNC_FEED_TIMEOUT must be > 0")
	}
	syncFeedCircuitEnabled, err := strconv.ParseBool(getEnv("SYNC_FEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_FEED_CIRCUIT_ENABLED: %w", err)
	}
	syncFeedCircuitFailureCount, err := getEnvAsInt("SYNC_FEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_FEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if syncFeedCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SYNC_FEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	syncFeedCircuitOpenTimeout, err := time.ParseDuration(getEnv("SYNC_FEED_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_FEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if syncFeedCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SYNC_FEED_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	syncFeedCircuitHalfOpenMax, err := getEnvAsInt("SYNC_FEED_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_FEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if syncFeedCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("SYNC_FEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "matchlog-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                   getEnv("DB_URL", ""),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CacheEnabled:            cacheEnabled,
		CacheTTL:                cacheTTL,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		PprofEnabled:            pprofEnabled,
		PprofAddr:               pprofAddr,

		AuthBaseURL:               getEnv("AUTH_BASE_URL", "http://localhost:8081"),
		AuthIntrospectPath:        getEnv("AUTH_INTROSPECT_PATH", "/v1/auth/introspect"),
		AuthTimeout:               authTimeout,
		AuthCircuitEnabled:        authCircuitEnabled,
		AuthCircuitFailureCount:   authCircuitFailureCount,
		AuthCircuitOpenTimeout:    authCircuitOpenTimeout,
		AuthCircuitHalfOpenMaxReq: authCircuitHalfOpenMaxReq,

		UptraceEnabled:     uptraceEnabled,
		UptraceDSN:         uptraceDSN,
		UptraceLogsEnabled: uptraceLogsEnabled,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		SyncFeedEnabled:             syncFeedEnabled,
		SyncFeedBaseURL:             syncFeedBaseURL,
		SyncFeedToken:               syncFeedToken,
		SyncFeedTimeout:             syncFeedTimeout,
		SyncFeedCircuitEnabled:      syncFeedCircuitEnabled,
		SyncFeedCircuitFailureCount: syncFeedCircuitFailureCount,
		SyncFeedCircuitOpenTimeout:  syncFeedCircuitOpenTimeout,
		SyncFeedCircuitHalfOpenMax:  syncFeedCircuitHalfOpenMax,

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
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
