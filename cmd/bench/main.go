// README: Smoke/benchmark runner against a running API; executes HTTP/DB/Redis checks and prints results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	results := NewRunner(cfg).RunAll(ctx)

	counts := make(map[string]int, 4)
	for _, r := range results {
		counts[r.Status]++
	}
	fmt.Printf("\n%d cases: %d passed, %d failed, %d pending, %d skipped\n",
		len(results), counts[statusPass], counts[statusFail], counts[statusPending], counts[statusSkip])

	if counts[statusFail] > 0 || (cfg.Strict && counts[statusPending] > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL        string
	Token          string
	DSN            string
	RedisAddr      string
	MigrationPath  string
	ApplyMigration bool
	Live           bool
	Strict         bool
	Timeout        time.Duration
	Concurrency    int
	Duration       time.Duration
}

// loadConfig reads TRIP_BENCH_* (and the API's TRIP_DB_DSN / TRIP_REDIS_ADDR)
// as flag defaults; flags win.
func loadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("TRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("bench.base_url", "http://localhost:8080")
	v.SetDefault("bench.token", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("bench.migration", "migrations/0001_ai_usage.sql")
	v.SetDefault("bench.apply_migration", false)
	v.SetDefault("bench.live", false)
	v.SetDefault("bench.strict", false)
	v.SetDefault("bench.timeout", 10*time.Minute)
	v.SetDefault("bench.concurrency", 10)
	v.SetDefault("bench.duration", 5*time.Second)

	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", v.GetString("bench.base_url"), "API base URL")
	flag.StringVar(&cfg.Token, "token", v.GetString("bench.token"), "bearer token when auth is enabled")
	flag.StringVar(&cfg.DSN, "dsn", v.GetString("db.dsn"), "Postgres DSN (empty skips DB checks)")
	flag.StringVar(&cfg.RedisAddr, "redis", v.GetString("redis.addr"), "Redis address (empty skips redis checks)")
	flag.StringVar(&cfg.MigrationPath, "migration", v.GetString("bench.migration"), "migration SQL path")
	flag.BoolVar(&cfg.ApplyMigration, "apply-migration", v.GetBool("bench.apply_migration"), "apply the migration before running cases")
	flag.BoolVar(&cfg.Live, "live", v.GetBool("bench.live"), "run cases that call the model (costs tokens)")
	flag.BoolVar(&cfg.Strict, "strict", v.GetBool("bench.strict"), "exit non-zero on pending cases")
	flag.DurationVar(&cfg.Timeout, "timeout", v.GetDuration("bench.timeout"), "total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", v.GetInt("bench.concurrency"), "workers for the load case")
	flag.DurationVar(&cfg.Duration, "duration", v.GetDuration("bench.duration"), "length of the load case")
	flag.Parse()

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg
}
