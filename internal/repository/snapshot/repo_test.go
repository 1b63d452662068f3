package snapshot

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	repo := New(newMockKVStore())
	ctx := context.Background()

	in := []catalog.College{{
		ID:           "c1",
		Name:         "Polytech",
		PassingScore: 75.5,
		SpecialtyIDs: []string{"s1"},
		Specs:        []catalog.TagWeight{{TagID: "t1", Weight: 80}},
	}}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := repo.Save(ctx, catalog.Colleges, data); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx, catalog.Colleges)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := Decode[catalog.College](loaded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestLoad_Missing(t *testing.T) {
	repo := New(newMockKVStore())
	_, err := repo.Load(context.Background(), catalog.Tags)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_StoreError(t *testing.T) {
	ms := newMockKVStore()
	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("io") }
	repo := New(ms)

	_, err := repo.Load(context.Background(), catalog.Tags)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestSave_RejectsInvalidJSON(t *testing.T) {
	repo := New(newMockKVStore())
	err := repo.Save(context.Background(), catalog.Tags, []byte("{not json"))
	if !errors.Is(err, domain.ErrMalformedSnapshot) {
		t.Errorf("expected ErrMalformedSnapshot, got %v", err)
	}
}

func TestSave_UsesCollectionKey(t *testing.T) {
	ms := newMockKVStore()
	repo := New(ms)
	_ = repo.Save(context.Background(), catalog.News, []byte("[]"))
	if _, ok := ms.data["careerdex:collection:news"]; !ok {
		t.Errorf("expected key careerdex:collection:news, got %v", ms.data)
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode[catalog.Tag]([]byte(`{"id":1`))
	if !errors.Is(err, domain.ErrMalformedSnapshot) {
		t.Errorf("expected ErrMalformedSnapshot, got %v", err)
	}
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	data, err := Encode[catalog.Tag](nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Encode(nil) = %s, want []", data)
	}
}

func TestCount(t *testing.T) {
	n, err := Count([]byte(`[{"id":"a"},{"id":"b"}]`))
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v", n, err)
	}
	if _, err := Count([]byte(`"x"`)); err == nil {
		t.Error("expected error for non-array snapshot")
	}
}
