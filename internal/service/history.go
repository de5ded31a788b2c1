package service

import (
	"context"

	"github.com/vaultpass/passgen-go/internal/model"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryStore reads generation events.
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]model.GenerationRecord, error)
	CountByLabel(ctx context.Context) (map[string]int, error)
}

// HistoryService exposes the generation history.
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns the newest generation events. limit is clamped to [1, 100];
// zero or negative selects the default of 20.
func (s *HistoryService) Recent(ctx context.Context, limit int) (model.HistoryResponse, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	records, err := s.store.Recent(ctx, limit)
	if err != nil {
		return model.HistoryResponse{}, err
	}
	return model.HistoryResponse{Records: records}, nil
}

// Stats summarizes the generation history by strength label.
func (s *HistoryService) Stats(ctx context.Context) (model.HistoryStats, error) {
	counts, err := s.store.CountByLabel(ctx)
	if err != nil {
		return model.HistoryStats{}, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return model.HistoryStats{Total: total, ByLabel: counts}, nil
}
