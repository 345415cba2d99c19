package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultConnectionString = "Host=localhost;Port=5432;Database=settlement_core_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
	defaultHTTPAddr         = ":8080"
	defaultChannelID        = "FlowApps"
	defaultMaxTxnAmount     = "100000"
	defaultLinkBaseURL      = "https://pay.flowapps.local/l"
	defaultMigrationsDir    = "migrations"
	defaultOutboxInterval   = 2 * time.Second
	defaultOutboxWorkers    = 4
	defaultReconcileEvery   = time.Minute
)

type Config struct {
	DatabaseDSN          string
	HTTPAddr             string
	MigrationsDir        string
	ChannelID            string
	ChannelKey           string
	MaxTransactionAmount decimal.Decimal
	PaymentLinkBaseURL   string
	OutboxPollInterval   time.Duration
	OutboxWorkers        int
	ReconcileInterval    time.Duration
}

func Load() (Config, error) {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	maxAmountRaw := strings.TrimSpace(os.Getenv("MAX_TRANSACTION_AMOUNT"))
	if maxAmountRaw == "" {
		maxAmountRaw = defaultMaxTxnAmount
	}
	maxAmount, err := decimal.NewFromString(maxAmountRaw)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_TRANSACTION_AMOUNT: %w", err)
	}
	if maxAmount.LessThanOrEqual(decimal.Zero) {
		return Config{}, fmt.Errorf("MAX_TRANSACTION_AMOUNT must be greater than zero")
	}

	interval, err := durationFromEnv("OUTBOX_POLL_INTERVAL", defaultOutboxInterval)
	if err != nil {
		return Config{}, err
	}
	reconcile, err := durationFromEnv("RECONCILE_INTERVAL", defaultReconcileEvery)
	if err != nil {
		return Config{}, err
	}
	workers, err := intFromEnv("OUTBOX_WORKERS", defaultOutboxWorkers)
	if err != nil {
		return Config{}, err
	}

	return Config{
		DatabaseDSN:          normalizeConnectionString(conn),
		HTTPAddr:             stringFromEnv("HTTP_ADDR", defaultHTTPAddr),
		MigrationsDir:        stringFromEnv("MIGRATIONS_DIR", defaultMigrationsDir),
		ChannelID:            stringFromEnv("CHANNEL_ID", defaultChannelID),
		ChannelKey:           strings.TrimSpace(os.Getenv("CHANNEL_KEY")),
		MaxTransactionAmount: maxAmount,
		PaymentLinkBaseURL:   stringFromEnv("PAYMENT_LINK_BASE_URL", defaultLinkBaseURL),
		OutboxPollInterval:   interval,
		OutboxWorkers:        workers,
		ReconcileInterval:    reconcile,
	}, nil
}

func stringFromEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

// normalizeConnectionString converts the semicolon key=value DSN format
// used by the hosting platform into a lib/pq connection string.
func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
