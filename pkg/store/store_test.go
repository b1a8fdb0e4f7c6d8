package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/stringbean/pkg/core/raster"
	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
)

func testRecord(created time.Time) *Record {
	doc := sbio.NewDocument("ignored", 10, 10, []raster.Position{{X: 1, Y: 1}, {X: 8, Y: 8}}, []int{0, 1}, 0.2, 12)
	rec := NewRecord(doc)
	rec.CreatedAt = created
	return rec
}

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := testRecord(base)
	newer := testRecord(base.Add(time.Minute))
	for _, rec := range []*Record{older, newer} {
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != older.ID || got.Document.ID != older.ID || got.Document.Lines() != 1 {
		t.Errorf("Get = %+v", got)
	}
	if !got.CreatedAt.Equal(older.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, older.CreatedAt)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Errorf("List order wrong: %d records", len(list))
	}
	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("List(1) = %d records", len(list))
	}

	if err := s.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, older.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get after Delete = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, older.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second Delete = %v, want NOT_FOUND", err)
	}

	bad := testRecord(base)
	bad.ID = "../escape"
	if err := s.Save(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("Save(bad id) = %v, want INVALID_ID", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "plans"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Path(), "junk.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), testRecord(time.Now())); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(context.Background(), 10)
	if err != nil || len(list) != 1 {
		t.Errorf("List = %d records, %v", len(list), err)
	}
}

func TestNewRecordDoesNotMutateDocument(t *testing.T) {
	doc := sbio.NewDocument("original", 4, 4, []raster.Position{{}}, []int{0}, 0.2, 0)
	rec := NewRecord(doc)
	if doc.ID != "original" {
		t.Errorf("document ID changed to %s", doc.ID)
	}
	if rec.Document.ID != rec.ID || errors.ValidatePlanID(rec.ID) != nil {
		t.Errorf("record ID %s, document ID %s", rec.ID, rec.Document.ID)
	}
}

func TestNewMongoStoreBadURI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := NewMongoStore(ctx, "not-a-mongo-uri", ""); err == nil {
		t.Error("NewMongoStore accepted an invalid uri")
	}
}
