// README: One-shot CLI; generates an itinerary with the configured provider and prints the envelope.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"tripplanner/internal/ai"
	"tripplanner/internal/config"
	"tripplanner/internal/itinerary"
	"tripplanner/internal/logging"
)

func main() {
	var (
		req      itinerary.TripRequest
		prefs    string
		food     string
		timeout  time.Duration
		logLevel string
	)
	flag.StringVar(&req.Destination, "destination", "Lisbon", "trip destination")
	flag.StringVar(&req.DestinationState, "state", "", "destination state or region")
	flag.StringVar(&req.DepartureDate, "from", time.Now().AddDate(0, 1, 0).Format(itinerary.DateLayout), "departure date (YYYY-MM-DD)")
	flag.StringVar(&req.ReturnDate, "to", time.Now().AddDate(0, 1, 2).Format(itinerary.DateLayout), "return date (YYYY-MM-DD)")
	flag.IntVar(&req.TotalAdults, "adults", 2, "number of adults")
	flag.IntVar(&req.TotalChildren, "children", 0, "number of children")
	flag.StringVar(&prefs, "activities", "cultural,museum", "comma separated activity keywords")
	flag.StringVar(&food, "food", "food_local", "comma separated food keywords")
	flag.StringVar(&req.SpecialNote, "note", "", "special note for the planner")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	req.Activities = splitList(prefs)
	req.Food = splitList(food)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(false, logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	completer, closeCompleter, err := ai.NewCompleter(ctx, ai.ProviderConfig{
		Provider: cfg.AI.Provider,
		OpenAI:   ai.OpenAIConfig{APIKey: cfg.AI.OpenAIKey, BaseURL: cfg.AI.OpenAIBaseURL, Model: cfg.AI.OpenAIModel, Timeout: cfg.AI.Timeout},
		Gemini:   ai.GeminiConfig{APIKey: cfg.AI.GeminiKey, Model: cfg.AI.GeminiModel, JSONMode: cfg.AI.GeminiJSON},
	})
	if err != nil {
		log.Fatal("init ai provider", zap.Error(err))
	}
	defer func() { _ = closeCompleter() }()

	svc := itinerary.NewService(completer, log, itinerary.Options{
		ShortTripMaxDays: cfg.Planner.ShortTripMaxDays,
		ChunkSize:        cfg.Planner.ChunkSize,
		Concurrency:      cfg.Planner.Concurrency,
		MaxTripDays:      cfg.Planner.MaxTripDays,
		Retry:            itinerary.RetryPolicy{MaxRetries: cfg.Planner.MaxRetries, Base: cfg.Planner.RetryBase},
	})

	start := time.Now()
	it, err := svc.Generate(ctx, req)
	env := itinerary.Envelope{Success: err == nil, Message: "Itinerary generated successfully.", Data: it}
	if err != nil {
		env.Message = err.Error()
		env.Data = nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(env)
	log.Info("done", zap.String("model", completer.Name()), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
