package itinerary

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlaceMatch is a real place resolved from an activity's place name.
type PlaceMatch struct {
	Name    string
	Address string
	Rating  float32
	PlaceID string
}

// PlaceLookup resolves place names and finds candidates near a destination.
type PlaceLookup interface {
	FindPlace(ctx context.Context, name, near string) (*PlaceMatch, error)
	SearchNearby(ctx context.Context, near, query string, limit int) ([]PlaceMatch, error)
}

// TravelEstimator estimates travel time between two addresses.
type TravelEstimator interface {
	TravelTime(ctx context.Context, origin, destination string) (time.Duration, error)
}

// Enricher decorates generated days with map data. Every lookup is
// best-effort: failures are logged and the activity is left as generated.
type Enricher struct {
	places      PlaceLookup
	travel      TravelEstimator
	concurrency int
	log         *zap.Logger
}

// NewEnricher returns nil when places is nil. travel may be nil to skip
// travel times.
func NewEnricher(places PlaceLookup, travel TravelEstimator, concurrency int, log *zap.Logger) *Enricher {
	if places == nil {
		return nil
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{places: places, travel: travel, concurrency: concurrency, log: log.Named("enrich")}
}

// Enrich fills address, rating and place_id on each activity and, when a
// TravelEstimator is set, travel_minutes from the previous activity of the
// same day.
func (e *Enricher) Enrich(ctx context.Context, destination string, days []DetailedDay) {
	if e == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for d := range days {
		for a := range days[d].Activities {
			act := &days[d].Activities[a]
			if strings.TrimSpace(act.Place) == "" {
				continue
			}
			g.Go(func() error {
				m, err := e.places.FindPlace(ctx, act.Place, destination)
				if err != nil {
					e.log.Debug("place lookup failed", zap.String("place", act.Place), zap.Error(err))
					return nil
				}
				if m == nil {
					return nil
				}
				act.Address = m.Address
				act.Rating = m.Rating
				act.PlaceID = m.PlaceID
				return nil
			})
		}
	}
	_ = g.Wait()

	if e.travel == nil {
		return
	}
	var tg errgroup.Group
	tg.SetLimit(e.concurrency)
	for d := range days {
		acts := days[d].Activities
		for i := 1; i < len(acts); i++ {
			from, to := locationOf(acts[i-1], destination), locationOf(acts[i], destination)
			if from == "" || to == "" {
				continue
			}
			act := &acts[i]
			tg.Go(func() error {
				dur, err := e.travel.TravelTime(ctx, from, to)
				if err != nil {
					e.log.Debug("travel estimate failed", zap.String("from", from), zap.String("to", to), zap.Error(err))
					return nil
				}
				act.TravelMinutes = int(dur.Round(time.Minute) / time.Minute)
				return nil
			})
		}
	}
	_ = tg.Wait()
}

func locationOf(a Activity, destination string) string {
	if a.Address != "" {
		return a.Address
	}
	if strings.TrimSpace(a.Place) == "" {
		return ""
	}
	return a.Place + ", " + destination
}
