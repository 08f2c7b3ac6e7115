package services

import (
	"context"
	"fmt"
	"sync"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/ports"
)

// displaySlot is one embedded map view. Each render is tagged with a
// monotonically increasing sequence number when issued; a completed render
// is installed only if no later-issued render has been installed already.
type displaySlot struct {
	store     ports.ArtifactStore
	lifecycle *ArtifactLifecycle

	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func newDisplaySlot(store ports.ArtifactStore, lifecycle *ArtifactLifecycle) *displaySlot {
	return &displaySlot{store: store, lifecycle: lifecycle}
}

func (s *displaySlot) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// install stores doc and makes it live. It reports false without creating a
// handle when seq is stale or when current (if non-nil) reports false.
func (s *displaySlot) install(ctx context.Context, seq uint64, doc domain.Document, current func() bool) (ports.ArtifactHandle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		return nil, false, nil
	}
	if current != nil && !current() {
		return nil, false, nil
	}

	h, err := s.store.Create(ctx, doc)
	if err != nil {
		return nil, false, fmt.Errorf("install artifact: %w", err)
	}
	s.applied = seq

	// The old handle is released only after the new one is live.
	if _, err := s.lifecycle.Set(ctx, h); err != nil && h != s.lifecycle.Live() {
		return nil, false, fmt.Errorf("install artifact: %w", err)
	}
	return h, true, nil
}

func (s *displaySlot) live() ports.ArtifactHandle {
	return s.lifecycle.Live()
}

func (s *displaySlot) appliedSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}
