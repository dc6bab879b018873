package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPlaces struct {
	matches map[string]PlaceMatch
	nearby  []PlaceMatch
	err     error
}

func (s *stubPlaces) FindPlace(_ context.Context, name, _ string) (*PlaceMatch, error) {
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.matches[name]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *stubPlaces) SearchNearby(_ context.Context, _, _ string, limit int) ([]PlaceMatch, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.nearby) > limit {
		return s.nearby[:limit], nil
	}
	return s.nearby, nil
}

func dayPlan() DetailedDay {
	return DetailedDay{
		DayNumber: 3,
		DayUUID:   "day-3-itinerary-x",
		Date:      "2025-06-03",
		Activities: []Activity{
			{Time: "10:00 AM", Title: "Museum visit", Place: "MAAT", Keyword: "museum"},
		},
	}
}

func TestRegenerate_UpdateKeepsIdentity(t *testing.T) {
	c := &scriptedCompleter{respond: func(string) (string, error) {
		return "Here you go:\n" + `{"day_number": 9, "date": "2030-01-01", "day_uuid": "bogus", "activities": [
			{"time": "10:00 AM", "title": "Garden walk", "place": "Estufa Fria", "keyword": "nature"}]}`, nil
	}}
	svc := NewService(c, zap.NewNop(), testOptions())

	res, err := svc.Regenerate(context.Background(), RegenerateRequest{
		Destination: "Lisbon",
		DayPlan:     dayPlan(),
		UserChange:  "something outdoors instead",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Day)
	assert.Equal(t, ModeUpdate, res.Mode)
	assert.Equal(t, 3, res.Day.DayNumber)
	assert.Equal(t, "2025-06-03", res.Day.Date)
	assert.Equal(t, "day-3-itinerary-x", res.Day.DayUUID)
	assert.Equal(t, "Garden walk", res.Day.Activities[0].Title)
}

func TestRegenerate_SearchUsesCandidates(t *testing.T) {
	var suggestions []string
	for i := 1; i <= 7; i++ {
		suggestions = append(suggestions, fmt.Sprintf(`{"title":"Option %d","place":"P%d","keyword":"outdoor"}`, i, i))
	}
	c := &scriptedCompleter{respond: func(string) (string, error) {
		return `{"suggestions":[` + strings.Join(suggestions, ",") + `]}`, nil
	}}
	places := &stubPlaces{nearby: []PlaceMatch{{Name: "Parque Eduardo VII", Address: "Lisbon"}}}
	svc := NewService(c, zap.NewNop(), testOptions(), WithPlaceLookup(places))

	res, err := svc.Regenerate(context.Background(), RegenerateRequest{
		Destination: "Lisbon",
		DayPlan:     dayPlan(),
		UserChange:  "parks",
		Mode:        "SEARCH",
	})
	require.NoError(t, err)
	assert.Equal(t, ModeSearch, res.Mode)
	assert.Nil(t, res.Day)
	assert.Len(t, res.Suggestions, 5)
	assert.Equal(t, 1, c.callsMatching("Parque Eduardo VII (Lisbon)"))
}

func TestRegenerate_CandidateSearchFailureIgnored(t *testing.T) {
	c := &scriptedCompleter{respond: func(string) (string, error) {
		return `{"suggestions":[{"title":"Option","place":"P"}]}`, nil
	}}
	svc := NewService(c, zap.NewNop(), testOptions(), WithPlaceLookup(&stubPlaces{err: errors.New("quota")}))

	res, err := svc.Regenerate(context.Background(), RegenerateRequest{
		Destination: "Lisbon", DayPlan: dayPlan(), UserChange: "parks", Mode: ModeSearch,
	})
	require.NoError(t, err)
	assert.Len(t, res.Suggestions, 1)
	assert.Zero(t, c.callsMatching("NEARBY CANDIDATES"))
}

func TestRegenerate_Validation(t *testing.T) {
	c := &scriptedCompleter{respond: func(string) (string, error) { return "{}", nil }}
	svc := NewService(c, zap.NewNop(), testOptions())

	tests := map[string]RegenerateRequest{
		"bad mode":       {Destination: "Lisbon", DayPlan: dayPlan(), UserChange: "x", Mode: "replace"},
		"no destination": {DayPlan: dayPlan(), UserChange: "x"},
		"no change":      {Destination: "Lisbon", DayPlan: dayPlan()},
		"empty day":      {Destination: "Lisbon", UserChange: "x"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, svc.ValidateRegenerate(req), ErrValidation)
			_, err := svc.Regenerate(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, c.calls())

	assert.NoError(t, svc.ValidateRegenerate(RegenerateRequest{Destination: "Lisbon", DayPlan: dayPlan(), UserChange: "x", Mode: "SEARCH"}))
}

func TestRegenerate_Malformed(t *testing.T) {
	c := &scriptedCompleter{respond: func(string) (string, error) { return `{"activities":[]}`, nil }}
	svc := NewService(c, zap.NewNop(), testOptions())

	_, err := svc.Regenerate(context.Background(), RegenerateRequest{
		Destination: "Lisbon", DayPlan: dayPlan(), UserChange: "x",
	})
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

type stubTravel struct{}

func (stubTravel) TravelTime(_ context.Context, origin, destination string) (time.Duration, error) {
	if strings.Contains(destination, "Unknown") {
		return 0, errors.New("no route found")
	}
	return 14*time.Minute + 40*time.Second, nil
}

func TestEnricher(t *testing.T) {
	places := &stubPlaces{matches: map[string]PlaceMatch{
		"MAAT":        {Name: "MAAT", Address: "Av. Brasilia, Lisbon", Rating: 4.5, PlaceID: "p-maat"},
		"Estufa Fria": {Name: "Estufa Fria", Address: "Parque Eduardo VII, Lisbon", Rating: 4.6, PlaceID: "p-ef"},
	}}
	days := []DetailedDay{{
		DayNumber: 1,
		Activities: []Activity{
			{Title: "Museum", Place: "MAAT"},
			{Title: "Garden", Place: "Estufa Fria"},
			{Title: "Dinner", Place: "Unknown Tavern"},
			{Title: "Rest"},
		},
	}}

	e := NewEnricher(places, stubTravel{}, 2, zap.NewNop())
	e.Enrich(context.Background(), "Lisbon", days)

	acts := days[0].Activities
	assert.Equal(t, "p-maat", acts[0].PlaceID)
	assert.Equal(t, float32(4.6), acts[1].Rating)
	assert.Equal(t, 15, acts[1].TravelMinutes)
	assert.Empty(t, acts[2].Address)
	assert.Zero(t, acts[2].TravelMinutes)
	assert.Zero(t, acts[3].TravelMinutes)
}

func TestNewEnricher_NilPlaces(t *testing.T) {
	e := NewEnricher(nil, stubTravel{}, 2, nil)
	assert.Nil(t, e)
	e.Enrich(context.Background(), "Lisbon", nil)
}
