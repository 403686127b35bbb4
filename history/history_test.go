/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package history

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tf2pug/pugbot/pug"
)

// memStore is an in-memory ObjectStore standing in for s3store.
type memStore struct {
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(ctx context.Context, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// TestRecordAndRecent round-trips summaries through the store.
func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	store := NewStore(mem, zerolog.Nop())

	sums := []pug.Summary{
		{PugID: 1700000000, Capacity: 12, Map: "cp_well",
			Players: []string{"a", "b"}, CreatedAt: 1700000000, EndedAt: 1700003600},
		{PugID: 1700010000, Capacity: 18, Map: "cp_granary",
			Players: []string{"c"}, CreatedAt: 1700010000, EndedAt: 1700013600},
	}
	for _, sum := range sums {
		if err := store.Record(ctx, sum); err != nil {
			t.Fatalf("Record(%v) failed: %v", sum.PugID, err)
		}
	}
	if len(mem.objects) != 2 {
		t.Fatalf("stored %d objects; want 2", len(mem.objects))
	}
	for key := range mem.objects {
		if !strings.HasPrefix(key, "history/") || !strings.HasSuffix(key, ".json") {
			t.Errorf("unexpected object key %q", key)
		}
	}

	recs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Recent returned %d records; want 2", len(recs))
	}

	byPug := make(map[int64]Record)
	for _, rec := range recs {
		byPug[rec.PugID] = rec
	}
	rec, ok := byPug[1700000000]
	if !ok {
		t.Fatalf("pug 1700000000 missing from Recent")
	}
	if rec.Map != "cp_well" || rec.Capacity != 12 || len(rec.Players) != 2 {
		t.Errorf("record = %+v", rec)
	}
	if rec.ID == "" {
		t.Errorf("record has no id")
	}
	if rec.EndedTime().Unix() != 1700003600 {
		t.Errorf("EndedTime() = %v; want unix 1700003600", rec.EndedTime())
	}
}

// TestRecentLimit verifies the n cap and that malformed records are
// skipped rather than failing the listing.
func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	store := NewStore(mem, zerolog.Nop())

	for i := int64(0); i < 5; i++ {
		sum := pug.Summary{PugID: 1700000000 + i, Capacity: 12, Map: "cp_badlands",
			CreatedAt: 1700000000 + i, EndedAt: 1700100000 + i}
		if err := store.Record(ctx, sum); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	mem.objects["history/2023-11-16/zzz-corrupt.json"] = []byte("{not json")

	recs, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("Recent(3) returned %d records", len(recs))
	}
}

// TestRecordFailure verifies store errors are wrapped and surfaced.
func TestRecordFailure(t *testing.T) {
	mem := newMemStore()
	mem.putErr = errors.New("bucket gone")
	store := NewStore(mem, zerolog.Nop())

	err := store.Record(context.Background(), pug.Summary{PugID: 1})
	if err == nil || !strings.Contains(err.Error(), "bucket gone") {
		t.Errorf("Record err = %v; want wrapped bucket gone", err)
	}
}

// TestEndedTimeLenient verifies odd timestamp formats still parse.
func TestEndedTimeLenient(t *testing.T) {
	cases := []struct {
		input    string
		wantZero bool
	}{
		{input: "2023-11-14T22:13:20Z", wantZero: false},
		{input: "2023-11-14 22:13:20", wantZero: false},
		{input: "Nov 14, 2023", wantZero: false},
		{input: "", wantZero: true},
		{input: "null", wantZero: true},
		{input: "not a date", wantZero: true},
	}
	for _, c := range cases {
		rec := Record{EndedAt: c.input}
		if got := rec.EndedTime().IsZero(); got != c.wantZero {
			t.Errorf("EndedTime(%q).IsZero() = %v; want %v", c.input, got, c.wantZero)
		}
	}
}
