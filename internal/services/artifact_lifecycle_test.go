package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestArtifactLifecycleSetReleasesPrevious(t *testing.T) {
	ctx := context.Background()

	for _, n := range []int{1, 2, 5, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			l := NewArtifactLifecycle("test", nil)
			handles := make([]*fakeHandle, n)

			for i := range n {
				handles[i] = &fakeHandle{id: fmt.Sprintf("h%d", i)}
				prev, err := l.Set(ctx, handles[i])
				if err != nil {
					t.Fatalf("set %d: %v", i, err)
				}
				if i == 0 && prev != nil {
					t.Fatalf("first set returned %v, want nil", prev)
				}
				if i > 0 && prev != handles[i-1] {
					t.Fatalf("set %d returned %v, want %s", i, prev, handles[i-1].id)
				}
			}

			released := 0
			for _, h := range handles {
				released += h.releaseCount()
			}
			if released != n-1 {
				t.Fatalf("releases = %d, want %d", released, n-1)
			}
			if handles[n-1].releaseCount() != 0 {
				t.Fatalf("live handle was released")
			}
			if l.Live() != handles[n-1] {
				t.Fatalf("live = %v, want last handle", l.Live())
			}
		})
	}
}

func TestArtifactLifecycleReleaseAll(t *testing.T) {
	ctx := context.Background()
	l := NewArtifactLifecycle("test", nil)

	a := &fakeHandle{id: "a"}
	b := &fakeHandle{id: "b"}
	_, _ = l.Set(ctx, a)
	_, _ = l.Set(ctx, b)

	if err := l.ReleaseAll(ctx); err != nil {
		t.Fatalf("release all: %v", err)
	}
	if a.releaseCount() != 1 || b.releaseCount() != 1 {
		t.Fatalf("releases = %d/%d, want 1/1", a.releaseCount(), b.releaseCount())
	}
	if l.Live() != nil {
		t.Fatalf("live should be nil after release all")
	}

	// A handle arriving after teardown is released right away.
	late := &fakeHandle{id: "late"}
	if _, err := l.Set(ctx, late); !errors.Is(err, ErrLifecycleClosed) {
		t.Fatalf("err = %v, want ErrLifecycleClosed", err)
	}
	if late.releaseCount() != 1 {
		t.Fatalf("late handle releases = %d, want 1", late.releaseCount())
	}

	if err := l.ReleaseAll(ctx); err != nil {
		t.Fatalf("second release all: %v", err)
	}
}

func TestArtifactLifecycleSameHandleIsNoop(t *testing.T) {
	ctx := context.Background()
	l := NewArtifactLifecycle("test", nil)
	h := &fakeHandle{id: "h"}

	_, _ = l.Set(ctx, h)
	if _, err := l.Set(ctx, h); err != nil {
		t.Fatalf("set same: %v", err)
	}
	if h.releaseCount() != 0 {
		t.Fatalf("releases = %d, want 0", h.releaseCount())
	}
}
