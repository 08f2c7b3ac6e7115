package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"
)

// ErrLifecycleClosed is returned by Set after ReleaseAll.
var ErrLifecycleClosed = errors.New("artifact lifecycle closed")

// ArtifactLifecycle tracks the single live artifact handle of one display.
// Every handle passed to Set is released exactly once: when it is superseded,
// at ReleaseAll, or immediately if the lifecycle is already closed.
type ArtifactLifecycle struct {
	name     string
	observer obs.Observer

	mu     sync.Mutex
	live   ports.ArtifactHandle
	closed bool
}

func NewArtifactLifecycle(name string, o obs.Observer) *ArtifactLifecycle {
	return &ArtifactLifecycle{name: name, observer: obs.OrNop(o)}
}

// Set makes h live and then releases the formerly live handle, which it
// returns. The new handle is live even when releasing the old one fails.
func (l *ArtifactLifecycle) Set(ctx context.Context, h ports.ArtifactHandle) (ports.ArtifactHandle, error) {
	if h == nil {
		return nil, errors.New("artifact lifecycle: nil handle")
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		if err := h.Release(ctx); err != nil {
			return nil, fmt.Errorf("artifact lifecycle %s: release after close: %w", l.name, err)
		}
		return nil, ErrLifecycleClosed
	}
	prev := l.live
	if prev == h {
		l.mu.Unlock()
		return nil, nil
	}
	l.live = h
	l.mu.Unlock()

	if prev == nil {
		return nil, nil
	}

	if err := prev.Release(ctx); err != nil {
		l.observer.Warn("artifact release failed", "display", l.name, "artifact_id", prev.ID(), "err", err)
		return prev, fmt.Errorf("artifact lifecycle %s: release %s: %w", l.name, prev.ID(), err)
	}
	l.observer.Debug("artifact replaced", "display", l.name, "live", h.ID(), "released", prev.ID())
	return prev, nil
}

// Live returns the displayed handle, or nil.
func (l *ArtifactLifecycle) Live() ports.ArtifactHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live
}

// ReleaseAll releases the live handle and closes the lifecycle.
func (l *ArtifactLifecycle) ReleaseAll(ctx context.Context) error {
	l.mu.Lock()
	live := l.live
	l.live = nil
	l.closed = true
	l.mu.Unlock()

	if live == nil {
		return nil
	}
	if err := live.Release(ctx); err != nil {
		return fmt.Errorf("artifact lifecycle %s: release %s: %w", l.name, live.ID(), err)
	}
	return nil
}
