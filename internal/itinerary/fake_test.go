package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tripplanner/internal/ai"
)

// scriptedCompleter answers by prompt kind and records every call.
type scriptedCompleter struct {
	mu      sync.Mutex
	systems []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	respond func(system string) (string, error)
}

func (c *scriptedCompleter) Name() string { return "scripted" }

func (c *scriptedCompleter) Complete(ctx context.Context, msgs []ai.Message) (string, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		m := c.maxInFlight.Load()
		if n <= m || c.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	system := msgs[0].Content
	c.mu.Lock()
	c.systems = append(c.systems, system)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.respond(system)
}

func (c *scriptedCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.systems)
}

func (c *scriptedCompleter) callsMatching(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.systems {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

func isOutline(system string) bool { return strings.Contains(system, "itinerary outline") }
func isDetail(system string) bool  { return strings.Contains(system, "ASSIGNED DAYS") }
func isShort(system string) bool   { return strings.Contains(system, "Trip Duration") }

func outlineJSON(days int, start string) string {
	first, _ := time.Parse(DateLayout, start)
	o := Outline{Title: "Lisbon Discovery", Category: "Cultural & Heritage"}
	for i := 0; i < days; i++ {
		o.Days = append(o.Days, DayOutline{
			DayNumber: i + 1,
			Date:      first.AddDate(0, 0, i).Format(DateLayout),
			Places:    []string{fmt.Sprintf("Place %d-A", i+1), fmt.Sprintf("Place %d-B", i+1)},
		})
	}
	b, _ := json.Marshal(o)
	return string(b)
}

var assignedDay = regexp.MustCompile(`Day (\d+) \(([^)]*)\): (.*)`)

// detailJSON echoes back the assigned days of a detail prompt.
func detailJSON(system string) string {
	var days []DetailedDay
	for _, m := range assignedDay.FindAllStringSubmatch(system, -1) {
		n, _ := strconv.Atoi(m[1])
		var acts []Activity
		for _, place := range strings.Split(m[3], ", ") {
			acts = append(acts, Activity{Time: "9:00 AM", Title: "Visit " + place, Place: place, Keyword: "cultural"})
		}
		days = append(days, DetailedDay{DayNumber: n, Date: m[2], DayUUID: "model-chosen", Activities: acts})
	}
	b, _ := json.Marshal(map[string]any{"days": days})
	return string(b)
}

func shortJSON(days int, category string) string {
	var out []DetailedDay
	for i := 0; i < days; i++ {
		out = append(out, DetailedDay{
			DayNumber:  i + 1,
			Activities: []Activity{{Time: "9:00 AM", Title: "Airport Arrival", Place: "Airport", Keyword: "arrival"}},
		})
	}
	b, _ := json.Marshal(map[string]any{
		"success": true,
		"data":    map[string]any{"title": "Porto Weekend", "category": category, "days": out, "status": "COMPLETED"},
		"message": "Itinerary generated successfully",
	})
	return string(b)
}

// plannerResponder serves a full long or short trip.
func plannerResponder(outlineDays int, start string) func(string) (string, error) {
	return func(system string) (string, error) {
		switch {
		case isOutline(system):
			return outlineJSON(outlineDays, start), nil
		case isDetail(system):
			return detailJSON(system), nil
		case isShort(system):
			return "```json\n" + shortJSON(outlineDays, "food & culinary experiences") + "\n```", nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}
}

func testRequest(dep, ret string) TripRequest {
	return TripRequest{
		TotalAdults:   2,
		TotalChildren: 1,
		Destination:   "Lisbon",
		DepartureDate: dep,
		ReturnDate:    ret,
		Activities:    []string{"museum", "food_local"},
		Pacing:        []string{"pace_balanced"},
	}
}

func testOptions() Options {
	return Options{Retry: RetryPolicy{MaxRetries: 2, Base: time.Millisecond}}
}

func fixedID() Option {
	return WithIDGenerator(func() string { return "itinerary-test" })
}
