package artifacts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"route-selection-client/internal/domain"
)

func TestMemoryStoreCreateGetRelease(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:8080/")

	h, err := store.Create(ctx, domain.Document{Body: []byte("<html></html>")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "http://localhost:8080/artifacts/" + h.ID(); h.URL() != want {
		t.Fatalf("url = %q, want %q", h.URL(), want)
	}

	doc, ok := store.Get(h.ID())
	if !ok {
		t.Fatalf("document should be retrievable before release")
	}
	if !strings.HasPrefix(doc.ContentType, "text/html") {
		t.Fatalf("content type = %q, want html default", doc.ContentType)
	}

	if err := h.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok := store.Get(h.ID()); ok {
		t.Fatalf("document should be gone after release")
	}
	if err := h.Release(ctx); !errors.Is(err, ErrReleased) {
		t.Fatalf("second release err = %v, want ErrReleased", err)
	}

	created, released := store.Stats()
	if created != 1 || released != 1 {
		t.Fatalf("stats = %d/%d, want 1/1", created, released)
	}
	if store.Outstanding() != 0 {
		t.Fatalf("outstanding = %d, want 0", store.Outstanding())
	}
}

func TestMemoryStoreRejectsEmptyDocument(t *testing.T) {
	store := NewMemoryStore("")
	if _, err := store.Create(context.Background(), domain.Document{}); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
