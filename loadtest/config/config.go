package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	BaseURL    string
	Keys       int
	ReadRatio  float64
	PinRatio   float64
	AdminRatio float64
	Rate       int
	Duration   time.Duration
	ValueSize  int
	TTLRatio   float64
	TTLMillis  int
	Output     string
	Timeout    time.Duration
	Name       string
	DisablePUT bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFloatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Load は LT_ で始まる環境変数を既定値として args を解析します。
func Load(args []string) (*Config, error) {
	var c Config
	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)

	disablePUT, _ := strconv.ParseBool(os.Getenv("LT_DISABLE_PUT"))

	fs.StringVar(&c.BaseURL, "base-url", envOr("LT_BASE_URL", "http://localhost:8080"), "Base URL of the sortkv server")
	fs.IntVar(&c.Keys, "keys", parseIntEnv("LT_KEYS", 5000), "Number of distinct keys")
	fs.Float64Var(&c.ReadRatio, "read-ratio", parseFloatEnv("LT_READ_RATIO", 0.8), "Ratio of GET requests")
	fs.Float64Var(&c.PinRatio, "pin-ratio", parseFloatEnv("LT_PIN_RATIO", 0.0), "Ratio of pin/unpin requests")
	fs.Float64Var(&c.AdminRatio, "admin-ratio", parseFloatEnv("LT_ADMIN_RATIO", 0.0), "Ratio of eviction admin reads")
	fs.IntVar(&c.Rate, "rate", parseIntEnv("LT_RATE", 100), "Requests per second")
	fs.DurationVar(&c.Duration, "duration", parseDurationEnv("LT_DURATION", 30*time.Second), "Duration of the load test")
	fs.IntVar(&c.ValueSize, "value-size", parseIntEnv("LT_VALUE_SIZE", 128), "Size of each value")
	fs.Float64Var(&c.TTLRatio, "ttl-ratio", parseFloatEnv("LT_TTL_RATIO", 0.0), "Ratio of PUTs carrying a TTL")
	fs.IntVar(&c.TTLMillis, "ttl-millis", parseIntEnv("LT_TTL_MILLIS", 10000), "TTL in milliseconds")
	fs.StringVar(&c.Output, "output", envOr("LT_OUTPUT", "vegeta_results.bin"), "Output file for raw results")
	fs.DurationVar(&c.Timeout, "timeout", parseDurationEnv("LT_TIMEOUT", 5*time.Second), "Request timeout")
	fs.StringVar(&c.Name, "name", envOr("LT_NAME", "mixed"), "Name of the attack")
	fs.BoolVar(&c.DisablePUT, "disable-put", disablePUT, "Send reads only")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &c, nil
}
