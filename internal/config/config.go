package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Report   ReportConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	WriteRateLimitPerMinute int
	WriteRateLimitBurst     int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type ReportConfig struct {
	// Timezone — фиксированный отчетный часовой пояс: все календарные
	// сравнения статистики выполняются в нем.
	Timezone    string
	ProductName string
}

type SyncConfig struct {
	BaseURL        string
	Debounce       time.Duration
	SettleDelay    time.Duration
	RequestTimeout time.Duration
	LocalStatePath string
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	writeRatePerMinute, err := parseIntEnv("WRITE_RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return cfg, err
	}

	writeRateBurst, err := parseIntEnv("WRITE_RATE_LIMIT_BURST", 20)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
		Port:                    serverPort,
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		IdleTimeout:             idleTimeout,
		WriteRateLimitPerMinute: writeRatePerMinute,
		WriteRateLimitBurst:     writeRateBurst,
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "opshub"),
		Password:        getEnv("DB_PASSWORD", "opshub"),
		Name:            getEnv("DB_NAME", "learningmate_ops"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	cfg.Report = ReportConfig{
		Timezone:    getEnv("REPORT_TIMEZONE", "Asia/Dhaka"),
		ProductName: getEnv("REPORT_PRODUCT_NAME", "Learningmate"),
	}

	debounce, err := parseDurationEnv("SYNC_DEBOUNCE", 1200*time.Millisecond)
	if err != nil {
		return cfg, err
	}

	settleDelay, err := parseDurationEnv("SYNC_SETTLE_DELAY", 500*time.Millisecond)
	if err != nil {
		return cfg, err
	}

	requestTimeout, err := parseDurationEnv("SYNC_REQUEST_TIMEOUT", 15*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Sync = SyncConfig{
		BaseURL:        getEnv("SYNC_BASE_URL", "http://localhost:8080"),
		Debounce:       debounce,
		SettleDelay:    settleDelay,
		RequestTimeout: requestTimeout,
		LocalStatePath: getEnv("SYNC_LOCAL_STATE_PATH", ".learningmate/state.json"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

// Location загружает отчетный часовой пояс.
func (c ReportConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load report timezone %s: %w", c.Timezone, err)
	}

	return loc, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Server.WriteRateLimitPerMinute <= 0 {
		return fmt.Errorf("WRITE_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Server.WriteRateLimitBurst <= 0 {
		return fmt.Errorf("WRITE_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.Report.Timezone == "" {
		return fmt.Errorf("REPORT_TIMEZONE is required")
	}

	if _, err := c.Report.Location(); err != nil {
		return err
	}

	if c.Sync.Debounce <= 0 {
		return fmt.Errorf("SYNC_DEBOUNCE must be greater than 0")
	}

	if c.Sync.SettleDelay <= 0 {
		return fmt.Errorf("SYNC_SETTLE_DELAY must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
