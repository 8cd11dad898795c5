package db

import (
	"context"
	"fmt"
)

// Hybrid combines a ConfigDatabase and a RunDatabase behind the Database
// interface. The two sides may be backed by different stores (sqlite for
// configs and schedules, mongodb for runs) or share a single one.
type Hybrid struct {
	ConfigDatabase
	RunDatabase
	shared bool
}

// Connect establishes both connections.
func (h *Hybrid) Connect(ctx context.Context) error {
	if err := h.ConfigDatabase.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect config database: %w", err)
	}
	if h.shared {
		return nil
	}
	if err := h.RunDatabase.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect run database: %w", err)
	}
	return nil
}

// Disconnect closes both connections.
func (h *Hybrid) Disconnect(ctx context.Context) error {
	err := h.ConfigDatabase.Disconnect(ctx)
	if h.shared {
		return err
	}
	if rerr := h.RunDatabase.Disconnect(ctx); err == nil {
		err = rerr
	}
	return err
}

// Ping checks both connections.
func (h *Hybrid) Ping(ctx context.Context) error {
	if err := h.ConfigDatabase.Ping(ctx); err != nil {
		return err
	}
	if h.shared {
		return nil
	}
	return h.RunDatabase.Ping(ctx)
}

// NewHybrid wires the two sides together. When cfgDB and runDB are the same
// value, connection management is only performed once.
func NewHybrid(cfgDB ConfigDatabase, runDB RunDatabase) *Hybrid {
	shared := false
	if c, ok := cfgDB.(RunDatabase); ok && c == runDB {
		shared = true
	}
	return &Hybrid{ConfigDatabase: cfgDB, RunDatabase: runDB, shared: shared}
}
