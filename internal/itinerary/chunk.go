package itinerary

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"tripplanner/internal/ai"
)

// ChunkOutline splits days into contiguous groups of at most size days.
// Chunk i holds days[i*size : min((i+1)*size, len(days))].
func ChunkOutline(days []DayOutline, size int) [][]DayOutline {
	if size < 1 {
		size = 1
	}
	if len(days) == 0 {
		return nil
	}
	chunks := make([][]DayOutline, 0, (len(days)+size-1)/size)
	for start := 0; start < len(days); start += size {
		end := start + size
		if end > len(days) {
			end = len(days)
		}
		chunks = append(chunks, days[start:end])
	}
	return chunks
}

// dispatchChunks runs one detail call per chunk, at most s.concurrency in
// flight, and returns the days concatenated in chunk order. Any chunk that
// fails after retries fails the whole call.
func (s *Service) dispatchChunks(ctx context.Context, req TripRequest, chunks [][]DayOutline, itineraryID string) ([]DetailedDay, error) {
	sem := semaphore.NewWeighted(int64(s.concurrency))
	results := make([][]DetailedDay, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			defer sem.Release(1)

			s.log.Info("processing chunk", zap.Int("chunk", i), zap.Int("days", len(chunk)))
			days, err := s.detailChunk(ctx, req, i, chunk, itineraryID)
			if err != nil {
				return err
			}
			s.log.Info("chunk done", zap.Int("chunk", i), zap.Int("days", len(days)))
			results[i] = days
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []DetailedDay
	for _, days := range results {
		merged = append(merged, days...)
	}
	return merged, nil
}

func (s *Service) detailChunk(ctx context.Context, req TripRequest, idx int, chunk []DayOutline, itineraryID string) ([]DetailedDay, error) {
	label := fmt.Sprintf("detail chunk %d", idx)
	raw, err := s.completeWithRetry(ctx, label, DetailPrompt(req, chunk, itineraryID))
	if err != nil {
		return nil, err
	}
	days, err := parseDetailDays(raw)
	if err != nil {
		s.log.Error("unparsable chunk output", zap.Int("chunk", idx), zap.String("raw", ai.Truncate(raw, 2000)))
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if len(days) == 0 {
		return nil, malformedErr("%s returned no days", label)
	}
	return days, nil
}

// parseDetailDays accepts {"days": [...]}, {"data": {"days": [...]}} or a bare array.
func parseDetailDays(raw string) ([]DetailedDay, error) {
	cleaned := ai.NormalizeJSON(raw)

	var days []DetailedDay
	if err := json.Unmarshal([]byte(cleaned), &days); err == nil {
		return days, nil
	}

	var wrapped struct {
		Days []DetailedDay `json:"days"`
		Data *struct {
			Days []DetailedDay `json:"days"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, malformedErr("invalid detail JSON: %v", err)
	}
	if wrapped.Days != nil {
		return wrapped.Days, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data.Days, nil
	}
	return nil, nil
}
