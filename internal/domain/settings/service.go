// Package settings provides goods-out reasons and justification
// templates. The remote endpoints return all entries; filtering to
// active ones is done here.
package settings

import (
	"context"
	"sort"
)

// Reason is a configurable goods-out reason (Grund).
type Reason struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"isActive"`
	OrderIndex int    `json:"orderIndex"`
}

// Justification is a configurable begruendung template.
type Justification struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	IsActive   bool   `json:"isActive"`
	OrderIndex int    `json:"orderIndex"`
}

// Remote is the settings endpoint set.
type Remote interface {
	FetchReasons(ctx context.Context) ([]Reason, error)
	FetchJustifications(ctx context.Context) ([]Justification, error)
}

// Service filters and orders settings for presentation.
type Service struct {
	remote Remote
}

// NewService creates a settings service.
func NewService(remote Remote) *Service {
	return &Service{remote: remote}
}

// ActiveReasons returns active reasons ordered by their configured
// index.
func (s *Service) ActiveReasons(ctx context.Context) ([]Reason, error) {
	all, err := s.remote.FetchReasons(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Reason, 0, len(all))
	for _, r := range all {
		if r.IsActive {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].OrderIndex < active[j].OrderIndex
	})
	return active, nil
}

// ActiveJustifications returns active justification templates ordered
// by their configured index.
func (s *Service) ActiveJustifications(ctx context.Context) ([]Justification, error) {
	all, err := s.remote.FetchJustifications(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Justification, 0, len(all))
	for _, j := range all {
		if j.IsActive {
			active = append(active, j)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].OrderIndex < active[j].OrderIndex
	})
	return active, nil
}
