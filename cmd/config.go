package main

import (
	"strings"
	"time"
)

const (
	driverBadger   = "badger"
	driverPostgres = "postgres"
)

type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	CORSOrigins     string        `env:"CORS_ORIGINS"`
	DebugEndpoint   bool          `env:"DEBUG_ENDPOINT,default=false"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AuthRateLimit     int           `env:"AUTH_RATE_LIMIT,default=10"`
	AuthRatePeriod    time.Duration `env:"AUTH_RATE_PERIOD,default=1m"`

	StoreDriver    string `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	PostgresDSN    string `env:"POSTGRES_DSN"`
	LimitMessages  *int   `env:"LIMIT_MESSAGES"`

	BufferSize             int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize   int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout            time.Duration `env:"SINK_TIMEOUT,default=100ms"`
	RestartInterval        time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval         time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LowCapacityThreshold   int           `env:"LOW_CAPACITY_THRESHOLD,default=64"`
	SequencerStripes       int           `env:"SEQUENCER_STRIPES,default=64"`
	PingInterval           time.Duration `env:"PING_INTERVAL,default=25s"`
	JoinRequiresMembership bool          `env:"JOIN_REQUIRES_MEMBERSHIP,default=false"`
	WSInsecureSkipVerify   bool          `env:"WS_INSECURE_SKIP_VERIFY,default=false"`

	CensoredWords string `env:"CENSORED_WORDS"`
	CensorMask    string `env:"CENSOR_MASK,default=*"`
}

// Origins splits CORS_ORIGINS on commas. Empty means any origin.
func (c Config) Origins() []string { return splitList(c.CORSOrigins) }

func (c Config) Censored() []string { return splitList(c.CensoredWords) }

// Mask is the first rune of CENSOR_MASK.
func (c Config) Mask() rune {
	for _, r := range c.CensorMask {
		return r
	}
	return '*'
}

func splitList(list string) []string {
	var items []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
