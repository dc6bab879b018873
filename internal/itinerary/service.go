// README: Itinerary service picks the short or chunked path and assembles the result.
package itinerary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripplanner/internal/ai"
)

// Options tunes the generation pipeline. Zero values take the defaults below,
// except Retry.MaxRetries where zero means a single attempt.
type Options struct {
	ShortTripMaxDays int
	ChunkSize        int
	Concurrency      int
	MaxTripDays      int
	Retry            RetryPolicy
}

const (
	DefaultShortTripMaxDays = 4
	DefaultChunkSize        = 5
	DefaultConcurrency      = 5
	DefaultMaxTripDays      = 30
	DefaultMaxRetries       = 2
	DefaultRetryBase        = 1200 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.ShortTripMaxDays <= 0 {
		o.ShortTripMaxDays = DefaultShortTripMaxDays
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.MaxTripDays <= 0 {
		o.MaxTripDays = DefaultMaxTripDays
	}
	if o.Retry.Base <= 0 {
		o.Retry.Base = DefaultRetryBase
	}
	if o.Retry.MaxRetries < 0 {
		o.Retry.MaxRetries = 0
	}
	return o
}

// Service turns trip requests into itineraries using a Completer.
type Service struct {
	completer   ai.Completer
	log         *zap.Logger
	shortMax    int
	chunkSize   int
	concurrency int
	maxDays     int
	retry       RetryPolicy

	enricher *Enricher
	places   PlaceLookup
	newID    func() string
}

// Option customises a Service beyond Options.
type Option func(*Service)

// WithEnricher attaches best-effort map enrichment to generated days.
func WithEnricher(e *Enricher) Option {
	return func(s *Service) { s.enricher = e }
}

// WithPlaceLookup supplies real candidates to search-mode regeneration.
func WithPlaceLookup(p PlaceLookup) Option {
	return func(s *Service) { s.places = p }
}

// WithIDGenerator overrides itinerary ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(completer ai.Completer, log *zap.Logger, opts Options, extra ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	s := &Service{
		completer:   completer,
		log:         log.Named("itinerary"),
		shortMax:    opts.ShortTripMaxDays,
		chunkSize:   opts.ChunkSize,
		concurrency: opts.Concurrency,
		maxDays:     opts.MaxTripDays,
		retry:       opts.Retry,
		newID:       func() string { return "itinerary-" + uuid.NewString() },
	}
	for _, o := range extra {
		o(s)
	}
	return s
}

// TripDays validates the request dates and returns the inclusive day count.
func TripDays(req TripRequest) (int, error) {
	dep, err := time.Parse(DateLayout, strings.TrimSpace(req.DepartureDate))
	if err != nil {
		return 0, validationErr("dates must be in YYYY-MM-DD format")
	}
	ret, err := time.Parse(DateLayout, strings.TrimSpace(req.ReturnDate))
	if err != nil {
		return 0, validationErr("dates must be in YYYY-MM-DD format")
	}
	if ret.Before(dep) {
		return 0, validationErr("return_date must be the same or after departure_date")
	}
	return int(ret.Sub(dep).Hours()/24) + 1, nil
}

func (s *Service) validate(req TripRequest) (int, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return 0, validationErr("destination is required")
	}
	if req.TotalAdults < 1 {
		return 0, validationErr("total_adults must be at least 1")
	}
	if req.TotalChildren < 0 {
		return 0, validationErr("total_children must not be negative")
	}
	days, err := TripDays(req)
	if err != nil {
		return 0, err
	}
	if days > s.maxDays {
		return 0, validationErr("trip of %d days exceeds the %d day limit", days, s.maxDays)
	}
	return days, nil
}

// Validate checks req the way Generate does, without calling the model.
func (s *Service) Validate(req TripRequest) error {
	_, err := s.validate(req)
	return err
}

// Generate builds a full itinerary. Trips up to the short-trip limit use a
// single call; longer trips go outline, chunk, dispatch, merge.
func (s *Service) Generate(ctx context.Context, req TripRequest) (*Itinerary, error) {
	tripDays, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	itineraryID := s.newID()
	log := s.log.With(zap.String("itinerary_id", itineraryID), zap.Int("trip_days", tripDays))

	var it *Itinerary
	if tripDays <= s.shortMax {
		log.Info("using short trip path")
		it, err = s.generateShort(ctx, req, tripDays, itineraryID)
	} else {
		log.Info("using long trip path")
		it, err = s.generateLong(ctx, log, req, tripDays, itineraryID)
	}
	if err != nil {
		return nil, err
	}

	if err := finalize(it, itineraryID); err != nil {
		return nil, err
	}
	if s.enricher != nil {
		s.enricher.Enrich(ctx, req.Destination, it.Days)
	}
	log.Info("itinerary generated", zap.Int("days", len(it.Days)), zap.String("category", it.Category))
	return it, nil
}

func (s *Service) generateShort(ctx context.Context, req TripRequest, tripDays int, itineraryID string) (*Itinerary, error) {
	raw, err := s.completeWithRetry(ctx, "short trip", ShortTripPrompt(req, tripDays, itineraryID))
	if err != nil {
		return nil, err
	}

	var body struct {
		Itinerary
		Data *Itinerary `json:"data"`
	}
	if err := ai.DecodeJSON(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	it := body.Itinerary
	if body.Data != nil {
		it = *body.Data
	}
	if len(it.Days) == 0 {
		return nil, malformedErr("short trip returned no days")
	}
	return &it, nil
}

func (s *Service) generateLong(ctx context.Context, log *zap.Logger, req TripRequest, tripDays int, itineraryID string) (*Itinerary, error) {
	raw, err := s.completeWithRetry(ctx, "outline", OutlinePrompt(req, tripDays))
	if err != nil {
		return nil, err
	}
	var outline Outline
	if err := ai.DecodeJSON(raw, &outline); err != nil {
		return nil, fmt.Errorf("%w: outline: %v", ErrMalformedOutput, err)
	}
	if len(outline.Days) == 0 {
		return nil, malformedErr("outline returned empty days")
	}
	log.Info("outline generated", zap.Int("days", len(outline.Days)))

	chunks := ChunkOutline(outline.Days, s.chunkSize)
	log.Info("split outline", zap.Int("chunks", len(chunks)), zap.Int("chunk_size", s.chunkSize))

	days, err := s.dispatchChunks(ctx, req, chunks, itineraryID)
	if err != nil {
		return nil, err
	}
	log.Info("merged chunks", zap.Int("days", len(days)))

	return &Itinerary{
		Title:    outline.Title,
		Category: outline.Category,
		Days:     days,
	}, nil
}

// finalize checks title and category, stamps identifiers and marks the
// itinerary complete.
func finalize(it *Itinerary, itineraryID string) error {
	it.Title = strings.TrimSpace(it.Title)
	if it.Title == "" {
		return malformedErr("missing title")
	}
	category, ok := CanonicalCategory(it.Category)
	if !ok {
		return malformedErr("unknown category %q", it.Category)
	}
	it.Category = category
	it.ItineraryID = itineraryID
	for i := range it.Days {
		if it.Days[i].DayNumber == 0 {
			it.Days[i].DayNumber = i + 1
		}
		it.Days[i].DayUUID = DayUUID(it.Days[i].DayNumber, itineraryID)
		if it.Days[i].Activities == nil {
			it.Days[i].Activities = []Activity{}
		}
	}
	it.Status = StatusCompleted
	return nil
}
