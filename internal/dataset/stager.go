package dataset

import (
	"strings"
	"sync"

	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
)

// RawRecord is one record of an uploaded test data file, before validation.
type RawRecord struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	GroundTruth string `json:"ground_truth"`
}

// Stager validates uploaded test datasets and holds the staged dataset of
// each session until submission. Staging fully replaces whatever the
// session had staged before; nothing survives a process restart.
type Stager struct {
	mu     sync.RWMutex
	staged map[string][]models.TestCase
}

// NewStager creates an empty stager
func NewStager() *Stager {
	return &Stager{
		staged: make(map[string][]models.TestCase),
	}
}

// Stage validates records and stages them for the session. Field-level
// failures name the offending record index. An empty batch stages an empty
// dataset; submission rejects it later.
func (s *Stager) Stage(sessionID string, records []RawRecord) ([]models.TestCase, error) {
	cases := make([]models.TestCase, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, record := range records {
		if strings.TrimSpace(record.ID) == "" {
			return nil, errs.Validation("id", "record %d: id must not be empty", i)
		}
		if strings.TrimSpace(record.Question) == "" {
			return nil, errs.Validation("question", "record %d: question must not be empty", i)
		}
		if strings.TrimSpace(record.GroundTruth) == "" {
			return nil, errs.Validation("ground_truth", "record %d: ground_truth must not be empty", i)
		}
		if first, dup := seen[record.ID]; dup {
			return nil, errs.Validation("id", "record %d: duplicate id %q (first used by record %d)", i, record.ID, first)
		}
		seen[record.ID] = i

		cases = append(cases, models.TestCase{
			ID:          record.ID,
			Question:    record.Question,
			GroundTruth: record.GroundTruth,
		})
	}

	s.mu.Lock()
	s.staged[sessionID] = cases
	s.mu.Unlock()

	return append([]models.TestCase(nil), cases...), nil
}

// Current returns a copy of the session's staged dataset and whether one
// has been staged at all.
func (s *Stager) Current(sessionID string) ([]models.TestCase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cases, ok := s.staged[sessionID]
	if !ok {
		return nil, false
	}
	return append([]models.TestCase(nil), cases...), true
}

// Clear drops the session's staged dataset
func (s *Stager) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.staged, sessionID)
	s.mu.Unlock()
}
