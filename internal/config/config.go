package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"30s"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"5m"`
	PingTimeout     time.Duration `env:"PG_PING_TIMEOUT" default:"5s"`
}

// LedgerConfig tunes the ledger engine.
type LedgerConfig struct {
	// LockTimeout bounds the wait for an account's row lock.
	LockTimeout time.Duration `env:"LEDGER_LOCK_TIMEOUT" default:"3s"`
	// IdempotencyTTL is how long a key deduplicates retries.
	IdempotencyTTL time.Duration `env:"LEDGER_IDEMPOTENCY_TTL" default:"24h"`
}

type ReconciliationConfig struct {
	Enabled    bool          `env:"RECON_ENABLED" default:"true"`
	Interval   time.Duration `env:"RECON_INTERVAL" default:"15m"`
	BatchSize  int           `env:"RECON_BATCH_SIZE" default:"200"`
	AutoRepair bool          `env:"RECON_AUTO_REPAIR" default:"false"`
	Actor      string        `env:"RECON_ACTOR" default:"reconciliation"`
}

// DefaultLedger is used by tests and tools that do not read the environment.
func DefaultLedger() LedgerConfig {
	return LedgerConfig{
		LockTimeout:    3 * time.Second,
		IdempotencyTTL: 24 * time.Hour,
	}
}
