// README: Live end-to-end tests against a running API; skipped unless TRIP_API_BASE_URL is set.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/itinerary"
)

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    itinerary.Itinerary `json:"data"`
}

func apiBaseURL(t *testing.T) string {
	t.Helper()
	loadDotEnv(t)
	base := strings.TrimRight(os.Getenv("TRIP_API_BASE_URL"), "/")
	if base == "" {
		t.Skip("TRIP_API_BASE_URL not set; skipping live integration tests")
	}
	return base
}

func trip(days int) map[string]any {
	start := time.Now().AddDate(0, 2, 0)
	return map[string]any{
		"total_adults":   2,
		"total_children": 0,
		"destination":    "Kyoto",
		"departure_date": start.Format(itinerary.DateLayout),
		"return_date":    start.AddDate(0, 0, days-1).Format(itinerary.DateLayout),
		"activities":     []string{"cultural", "nature"},
		"food":           []string{"food_local"},
	}
}

func TestGenerateShortAndLongTrips(t *testing.T) {
	baseURL := apiBaseURL(t)
	client := &http.Client{Timeout: 5 * time.Minute}
	waitForAPIReady(t, client, baseURL)

	for _, days := range []int{3, 7} {
		t.Run(fmt.Sprintf("%d days", days), func(t *testing.T) {
			status, body := postJSON(t, client, baseURL+"/api/itineraries", trip(days), testClientIP())
			require.Equal(t, http.StatusOK, status, string(body))

			var env envelope
			require.NoError(t, json.Unmarshal(body, &env))
			assert.True(t, env.Success)
			assert.Equal(t, itinerary.StatusCompleted, env.Data.Status)
			assert.True(t, strings.HasPrefix(env.Data.ItineraryID, "itinerary-"))
			_, ok := itinerary.CanonicalCategory(env.Data.Category)
			assert.True(t, ok, "category %q", env.Data.Category)
			require.Len(t, env.Data.Days, days)
			for i, d := range env.Data.Days {
				assert.Equal(t, itinerary.DayUUID(d.DayNumber, env.Data.ItineraryID), d.DayUUID)
				if i > 0 {
					assert.Greater(t, d.DayNumber, env.Data.Days[i-1].DayNumber)
				}
			}
		})
	}
}

func TestGenerateQuotaGuard(t *testing.T) {
	baseURL := apiBaseURL(t)
	dsn := strings.TrimSpace(os.Getenv("TRIP_TEST_DSN"))
	if dsn == "" {
		t.Skip("TRIP_TEST_DSN not set; skipping quota guard test")
	}
	client := &http.Client{Timeout: 5 * time.Minute}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	// The API only honours X-Forwarded-For from TRIP_HTTP_TRUSTED_PROXIES, so
	// it must list this host for the caller below to be keyed separately.
	if os.Getenv("TRIP_TEST_PROXY_TRUSTED") == "" {
		t.Skip("TRIP_TEST_PROXY_TRUSTED not set; API must trust this host as a proxy")
	}
	caller := testClientIP()
	key := "ip:" + caller
	_, err = db.Exec(ctx, `
		INSERT INTO ai_usage (uid, tokens_remaining, last_reset_month)
		VALUES ($1, 1, $2)
		ON CONFLICT (uid) DO UPDATE SET tokens_remaining = 1, last_reset_month = EXCLUDED.last_reset_month
	`, key, time.Now().Format("2006-01"))
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		_, _ = db.Exec(cleanupCtx, "DELETE FROM ai_usage WHERE uid = $1", key)
		_, _ = db.Exec(cleanupCtx, "DELETE FROM ai_usage_log WHERE uid = $1", key)
	})

	waitForAPIReady(t, client, baseURL)

	status, body := postJSON(t, client, baseURL+"/api/itineraries", trip(2), caller)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = postJSON(t, client, baseURL+"/api/itineraries", trip(2), caller)
	require.Equal(t, http.StatusTooManyRequests, status, string(body))

	var remaining int
	require.NoError(t, db.QueryRow(ctx, "SELECT tokens_remaining FROM ai_usage WHERE uid = $1", key).Scan(&remaining))
	assert.Zero(t, remaining)
}

// testClientIP picks an address in the 198.18.0.0/15 benchmarking range.
func testClientIP() string {
	n := time.Now().UnixNano()
	return fmt.Sprintf("198.%d.%d.%d", 18+n%2, (n>>8)%256, n%254+1)
}

func postJSON(t *testing.T, client *http.Client, url string, body any, forwardedFor string) (int, []byte) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	if tok := os.Getenv("TRIP_TEST_TOKEN"); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func waitForAPIReady(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("api not ready: GET %s/health did not return 200 in time", baseURL)
}

func loadDotEnv(t *testing.T) {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		return
	}
	path := ""
	for i := 0; i < 8; i++ {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		if _, set := os.LookupEnv(k); set {
			continue
		}
		t.Setenv(k, strings.TrimSpace(v))
	}
}
