// README: Bench cases: infra connectivity, validation paths, live generation and throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"tripplanner/internal/infra"
	"tripplanner/internal/itinerary"
)

const (
	statusPass    = "PASS"
	statusFail    = "FAIL"
	statusPending = "PENDING"
	statusSkip    = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	day := func(offset int) string {
		return time.Now().AddDate(0, 1, offset).Format(itinerary.DateLayout)
	}
	trip := func(days int) map[string]any {
		return map[string]any{
			"total_adults":   2,
			"total_children": 1,
			"destination":    "Lisbon",
			"departure_date": day(0),
			"return_date":    day(days - 1),
			"activities":     []string{"cultural", "food_local"},
			"pacing":         []string{"pace_balanced"},
		}
	}
	dayPlan := map[string]any{
		"day_number": 1,
		"date":       day(0),
		"activities": []map[string]any{{"time": "10:00 AM", "title": "MAAT", "place": "MAAT", "keyword": "museum"}},
	}

	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "quota store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "rate limit counters reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range infra.SplitSQL(infra.StripSQLComments(string(sql))) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables named in the migration exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass, Note: strings.Join(tables, ",")}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil),
		httpCaseMethod("API: root", http.MethodGet, base+"/", nil, []int{200}, nil),
		httpCaseMethod("API: usage", http.MethodGet, base+"/api/usage", nil, []int{200}, []int{404}),

		// Validation paths never reach the model.
		httpCase("Itinerary: missing fields -> 400", base+"/api/itineraries", map[string]any{}, []int{400}, nil),
		httpCase("Itinerary: bad date format -> 400", base+"/api/itineraries", merge(trip(3), map[string]any{"departure_date": "01/06/2025"}), []int{400}, nil),
		httpCase("Itinerary: return before departure -> 400", base+"/api/itineraries", merge(trip(3), map[string]any{"return_date": day(-3)}), []int{400}, nil),
		httpCase("Regenerate: invalid mode -> 400", base+"/api/itineraries/regenerate", map[string]any{
			"destination": "Lisbon", "user_change": "x", "mode": "rewrite", "day_plan": dayPlan,
		}, []int{400}, nil),

		liveCase("Itinerary: short trip (3 days)", base+"/api/itineraries", trip(3), 3),
		liveCase("Itinerary: long trip (10 days, chunked)", base+"/api/itineraries", trip(10), 10),
		liveCase("Itinerary: legacy path", base+"/ai_suggestion", trip(2), 2),
		liveCase("Regenerate: update day", base+"/api/itineraries/regenerate", map[string]any{
			"destination": "Lisbon", "user_change": "replace the museum with an outdoor activity", "day_plan": dayPlan,
		}, 0),
		liveCase("Regenerate: search alternatives", base+"/regenerate_plan", map[string]any{
			"destination": "Lisbon", "user_change": "rooftop bars", "mode": "search", "day_plan": dayPlan,
		}, 0),

		manualCase("Error: provider down -> 502", "point TRIP_OPENAI_BASE_URL at a dead host and retry a live case"),
		manualCase("Quota: exhaustion -> 429", "set TRIP_QUOTA_MONTHLY_TOKENS=1 and run two live cases"),

		{
			Name:  "Perf: validation throughput",
			Focus: "bind + validate without model calls",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/itineraries", merge(trip(3), map[string]any{"return_date": day(-3)}))
			},
		},
	}
}

func merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (r *Runner) newRequest(ctx context.Context, method, url string, body io.Reader) *http.Request {
	req, _ := http.NewRequestWithContext(ctx, method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}
	return req
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			start := time.Now()
			resp, err := r.httpc.Do(r.newRequest(ctx, method, url, reader))
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			note := fmt.Sprintf("status=%d", resp.StatusCode)
			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: statusPass, Latency: latency, Note: note}
			}
			if contains(pendingStatuses, resp.StatusCode) {
				return Result{Status: statusPending, Latency: latency, Note: note}
			}
			return Result{Status: statusFail, Latency: latency, Note: note}
		},
	}
}

// liveCase posts to a model-backed route and checks the envelope. wantDays > 0
// also checks the number of generated days.
func liveCase(name, url string, body any, wantDays int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Live model",
		Run: func(ctx context.Context, r *Runner) Result {
			if !r.cfg.Live {
				return Result{Status: statusSkip, Note: "live=false"}
			}
			b, _ := json.Marshal(body)
			start := time.Now()
			resp, err := r.httpc.Do(r.newRequest(ctx, http.MethodPost, url, strings.NewReader(string(b))))
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			defer resp.Body.Close()
			latency := time.Since(start)

			var env struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
				Data    struct {
					Days []json.RawMessage `json:"days"`
				} `json:"data"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
				return Result{Status: statusFail, Latency: latency, Note: err.Error()}
			}
			if resp.StatusCode != http.StatusOK || !env.Success {
				return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d %s", resp.StatusCode, env.Message)}
			}
			if wantDays > 0 && len(env.Data.Days) != wantDays {
				return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("days=%d want %d", len(env.Data.Days), wantDays)}
			}
			return Result{Status: statusPass, Latency: latency, Note: env.Message}
		},
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: statusSkip, Note: note}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var (
		mu        sync.Mutex
		count     int64
		errCount  int64
		throttled int64
		wg        sync.WaitGroup
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				resp, err := r.httpc.Do(r.newRequest(ctx, http.MethodPost, url, strings.NewReader(string(b))))
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				if resp.StatusCode == http.StatusTooManyRequests {
					throttled++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d throttled=%d", rps, errCount, throttled)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}
