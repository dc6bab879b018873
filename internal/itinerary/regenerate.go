package itinerary

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tripplanner/internal/ai"
)

// Regeneration modes.
const (
	ModeUpdate = "update"
	ModeSearch = "search"
)

const maxSuggestions = 5

// UserContext carries optional traveller details into a regeneration prompt.
type UserContext struct {
	TotalAdults   int      `json:"total_adults"`
	TotalChildren int      `json:"total_children"`
	Preferences   []string `json:"preferences"`
	SpecialNote   string   `json:"special_note"`
}

// RegenerateRequest asks for one day of an existing itinerary to be reworked.
type RegenerateRequest struct {
	Destination string       `json:"destination" binding:"required"`
	DayPlan     DetailedDay  `json:"day_plan"`
	UserChange  string       `json:"user_change" binding:"required"`
	Mode        string       `json:"mode" binding:"omitempty,oneof=update search"`
	UserContext *UserContext `json:"user_context"`
}

// RegenerateResult holds the updated day (update mode) or the proposed
// alternatives (search mode).
type RegenerateResult struct {
	Mode        string       `json:"mode"`
	Day         *DetailedDay `json:"day,omitempty"`
	Suggestions []Activity   `json:"suggestions,omitempty"`
}

func normalizeRegenerate(req RegenerateRequest) (RegenerateRequest, error) {
	req.Mode = strings.ToLower(strings.TrimSpace(req.Mode))
	if req.Mode == "" {
		req.Mode = ModeUpdate
	}
	switch {
	case req.Mode != ModeUpdate && req.Mode != ModeSearch:
		return req, validationErr("mode must be %q or %q", ModeUpdate, ModeSearch)
	case strings.TrimSpace(req.Destination) == "":
		return req, validationErr("destination is required")
	case strings.TrimSpace(req.UserChange) == "":
		return req, validationErr("user_change is required")
	case len(req.DayPlan.Activities) == 0:
		return req, validationErr("day_plan must contain at least one activity")
	}
	return req, nil
}

// ValidateRegenerate checks req the way Regenerate does, without calling the model.
func (s *Service) ValidateRegenerate(req RegenerateRequest) error {
	_, err := normalizeRegenerate(req)
	return err
}

// Regenerate applies a free-text change to a single day.
func (s *Service) Regenerate(ctx context.Context, req RegenerateRequest) (*RegenerateResult, error) {
	req, err := normalizeRegenerate(req)
	if err != nil {
		return nil, err
	}

	log := s.log.With(zap.String("mode", req.Mode), zap.Int("day_number", req.DayPlan.DayNumber))
	candidates := s.searchCandidates(ctx, log, req)

	raw, err := s.completeWithRetry(ctx, "regenerate "+req.Mode, RegeneratePrompt(req, candidates))
	if err != nil {
		return nil, err
	}

	if req.Mode == ModeSearch {
		var body struct {
			Suggestions []Activity `json:"suggestions"`
		}
		if err := ai.DecodeJSON(raw, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		if len(body.Suggestions) == 0 {
			return nil, malformedErr("no suggestions returned")
		}
		if len(body.Suggestions) > maxSuggestions {
			body.Suggestions = body.Suggestions[:maxSuggestions]
		}
		log.Info("suggestions generated", zap.Int("count", len(body.Suggestions)))
		return &RegenerateResult{Mode: req.Mode, Suggestions: body.Suggestions}, nil
	}

	var day DetailedDay
	if err := ai.DecodeJSON(raw, &day); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(day.Activities) == 0 {
		return nil, malformedErr("regenerated day has no activities")
	}
	day.DayNumber = req.DayPlan.DayNumber
	day.Date = req.DayPlan.Date
	day.DayUUID = req.DayPlan.DayUUID

	if s.enricher != nil {
		days := []DetailedDay{day}
		s.enricher.Enrich(ctx, req.Destination, days)
		day = days[0]
	}
	log.Info("day regenerated", zap.Int("activities", len(day.Activities)))
	return &RegenerateResult{Mode: req.Mode, Day: &day}, nil
}

func (s *Service) searchCandidates(ctx context.Context, log *zap.Logger, req RegenerateRequest) []string {
	if req.Mode != ModeSearch || s.places == nil {
		return nil
	}
	found, err := s.places.SearchNearby(ctx, req.Destination, req.UserChange, maxSuggestions)
	if err != nil {
		log.Warn("candidate search failed", zap.Error(err))
		return nil
	}
	out := make([]string, 0, len(found))
	for _, p := range found {
		line := p.Name
		if p.Address != "" {
			line += " (" + p.Address + ")"
		}
		out = append(out, line)
	}
	return out
}
