package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
)

// Memory implements the full Database interface with in-process maps.
// Used by tests and the "memory" provider. All entities are copied on the
// way in and out, so callers can never mutate stored state through a
// returned pointer.
type Memory struct {
	mu            sync.RWMutex
	llmConfigs    []*models.LLMConfig
	searchConfigs []*models.SearchConfig
	schedules     []*models.Schedule
	runs          []*models.EvaluationRun
}

// New creates an empty in-memory database
func New() *Memory {
	return &Memory{}
}

// Connect is a no-op for the in-memory database
func (m *Memory) Connect(ctx context.Context) error { return nil }

// Disconnect is a no-op for the in-memory database
func (m *Memory) Disconnect(ctx context.Context) error { return nil }

// Ping is a no-op for the in-memory database
func (m *Memory) Ping(ctx context.Context) error { return nil }

func copyLLMConfig(cfg *models.LLMConfig) *models.LLMConfig {
	c := *cfg
	return &c
}

func copySearchConfig(cfg *models.SearchConfig) *models.SearchConfig {
	c := *cfg
	return &c
}

func copySchedule(s *models.Schedule) *models.Schedule {
	c := *s
	if s.LastRun != nil {
		t := *s.LastRun
		c.LastRun = &t
	}
	return &c
}

func copyRun(run *models.EvaluationRun) *models.EvaluationRun {
	c := *run
	c.Request.TestCases = append([]models.TestCase(nil), run.Request.TestCases...)
	c.Result.TestCaseResults = append([]models.PerCaseResult(nil), run.Result.TestCaseResults...)
	for i, r := range c.Result.TestCaseResults {
		c.Result.TestCaseResults[i].Contexts = append([]string(nil), r.Contexts...)
	}
	return &c
}

// LLM config operations

func (m *Memory) CreateLLMConfig(ctx context.Context, cfg *models.LLMConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.llmConfigs {
		if existing.Name == cfg.Name {
			return errs.Validation("name", "an llm config named %q already exists", cfg.Name)
		}
	}
	m.llmConfigs = append(m.llmConfigs, copyLLMConfig(cfg))
	return nil
}

func (m *Memory) GetLLMConfig(ctx context.Context, id string) (*models.LLMConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cfg := range m.llmConfigs {
		if cfg.ID == id {
			return copyLLMConfig(cfg), nil
		}
	}
	return nil, errs.NotFound("llm config", id)
}

func (m *Memory) GetLLMConfigByName(ctx context.Context, name string) (*models.LLMConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cfg := range m.llmConfigs {
		if cfg.Name == name {
			return copyLLMConfig(cfg), nil
		}
	}
	return nil, nil
}

func (m *Memory) ListLLMConfigs(ctx context.Context) ([]*models.LLMConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	configs := make([]*models.LLMConfig, 0, len(m.llmConfigs))
	for _, cfg := range m.llmConfigs {
		configs = append(configs, copyLLMConfig(cfg))
	}
	return configs, nil
}

func (m *Memory) UpdateLLMConfig(ctx context.Context, cfg *models.LLMConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.llmConfigs {
		if existing.ID != cfg.ID && existing.Name == cfg.Name {
			return errs.Validation("name", "an llm config named %q already exists", cfg.Name)
		}
	}
	for i, existing := range m.llmConfigs {
		if existing.ID == cfg.ID {
			m.llmConfigs[i] = copyLLMConfig(cfg)
			return nil
		}
	}
	return errs.NotFound("llm config", cfg.ID)
}

func (m *Memory) DeleteLLMConfig(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cfg := range m.llmConfigs {
		if cfg.ID == id {
			m.llmConfigs = append(m.llmConfigs[:i], m.llmConfigs[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("llm config", id)
}

// Search config operations

func (m *Memory) CreateSearchConfig(ctx context.Context, cfg *models.SearchConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.searchConfigs {
		if existing.Name == cfg.Name {
			return errs.Validation("name", "a search config named %q already exists", cfg.Name)
		}
	}
	m.searchConfigs = append(m.searchConfigs, copySearchConfig(cfg))
	return nil
}

func (m *Memory) GetSearchConfig(ctx context.Context, id string) (*models.SearchConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cfg := range m.searchConfigs {
		if cfg.ID == id {
			return copySearchConfig(cfg), nil
		}
	}
	return nil, errs.NotFound("search config", id)
}

func (m *Memory) GetSearchConfigByName(ctx context.Context, name string) (*models.SearchConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cfg := range m.searchConfigs {
		if cfg.Name == name {
			return copySearchConfig(cfg), nil
		}
	}
	return nil, nil
}

func (m *Memory) ListSearchConfigs(ctx context.Context) ([]*models.SearchConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	configs := make([]*models.SearchConfig, 0, len(m.searchConfigs))
	for _, cfg := range m.searchConfigs {
		configs = append(configs, copySearchConfig(cfg))
	}
	return configs, nil
}

func (m *Memory) UpdateSearchConfig(ctx context.Context, cfg *models.SearchConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.searchConfigs {
		if existing.ID != cfg.ID && existing.Name == cfg.Name {
			return errs.Validation("name", "a search config named %q already exists", cfg.Name)
		}
	}
	for i, existing := range m.searchConfigs {
		if existing.ID == cfg.ID {
			m.searchConfigs[i] = copySearchConfig(cfg)
			return nil
		}
	}
	return errs.NotFound("search config", cfg.ID)
}

func (m *Memory) DeleteSearchConfig(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cfg := range m.searchConfigs {
		if cfg.ID == id {
			m.searchConfigs = append(m.searchConfigs[:i], m.searchConfigs[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("search config", id)
}

// Schedule operations

func (m *Memory) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules = append(m.schedules, copySchedule(schedule))
	return nil
}

func (m *Memory) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.schedules {
		if s.ID == id {
			return copySchedule(s), nil
		}
	}
	return nil, errs.NotFound("schedule", id)
}

func (m *Memory) ListSchedules(ctx context.Context, enabled *bool) ([]*models.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var schedules []*models.Schedule
	for _, s := range m.schedules {
		if enabled != nil && s.Enabled != *enabled {
			continue
		}
		schedules = append(schedules, copySchedule(s))
	}
	return schedules, nil
}

func (m *Memory) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.schedules {
		if existing.ID == schedule.ID {
			m.schedules[i] = copySchedule(schedule)
			return nil
		}
	}
	return errs.NotFound("schedule", schedule.ID)
}

func (m *Memory) DeleteSchedule(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.schedules {
		if s.ID == id {
			m.schedules = append(m.schedules[:i], m.schedules[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("schedule", id)
}

// Run operations

func (m *Memory) SaveRun(ctx context.Context, run *models.EvaluationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, copyRun(run))
	return nil
}

func (m *Memory) GetRun(ctx context.Context, id string) (*models.EvaluationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, run := range m.runs {
		if run.ID == id {
			return copyRun(run), nil
		}
	}
	return nil, errs.NotFound("evaluation run", id)
}

// ListRuns returns runs ordered by created_at descending.
func (m *Memory) ListRuns(ctx context.Context) ([]*models.EvaluationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]*models.EvaluationRun, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, copyRun(run))
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

func (m *Memory) DeleteRun(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, run := range m.runs {
		if run.ID == id {
			m.runs = append(m.runs[:i], m.runs[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("evaluation run", id)
}
