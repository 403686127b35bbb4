/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tf2pug/pugbot/internal"
	"github.com/tf2pug/pugbot/pug"
)

const keyPrefix = "history/"

// Record is one finished pug as persisted to the store.
type Record struct {
	ID       string   `json:"id"`
	PugID    int64    `json:"pugId"`
	Capacity int      `json:"capacity"`
	Map      string   `json:"map"`
	Players  []string `json:"players"`

	// RFC3339; read back leniently since older records were written by
	// hand during migration
	CreatedAt string `json:"createdAt"`
	EndedAt   string `json:"endedAt"`
}

// EndedTime parses the record's end timestamp, zero time when absent or
// unparseable.
func (r Record) EndedTime() time.Time {
	t, err := internal.ParseDateOrZero(r.EndedAt)
	if err != nil {
		return time.Time{}
	}

	return t
}

// ObjectStore is the slice of s3store.Store the history needs; split out
// so tests can substitute an in-memory store.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Store persists one JSON object per finished pug under a date-prefixed
// key, so a reverse key listing yields newest first.
type Store struct {
	store ObjectStore
	log   zerolog.Logger
}

func NewStore(store ObjectStore, log zerolog.Logger) *Store {
	return &Store{
		store: store,
		log:   log,
	}
}

// Record implements pug.Recorder.
func (s *Store) Record(ctx context.Context, sum pug.Summary) error {
	rec := Record{
		ID:        uuid.NewString(),
		PugID:     sum.PugID,
		Capacity:  sum.Capacity,
		Map:       sum.Map,
		Players:   sum.Players,
		CreatedAt: time.Unix(sum.CreatedAt, 0).UTC().Format(time.RFC3339),
		EndedAt:   time.Unix(sum.EndedAt, 0).UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history.record: marshal pug %v: %w", sum.PugID, err)
	}

	key := fmt.Sprintf("%v%v/%v.json", keyPrefix,
		time.Unix(sum.EndedAt, 0).UTC().Format("2006-01-02"), rec.ID)
	if err := s.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("history.record: store pug %v: %w", sum.PugID, err)
	}

	s.log.Info().Int64("pug", sum.PugID).Str("map", sum.Map).
		Msg("pug recorded to history")

	return nil
}

// Recent returns up to n of the most recently ended pugs, newest first.
// Individual unreadable records are skipped rather than failing the whole
// listing.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		n = 5
	}

	keys, err := s.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("history.recent: %w", err)
	}

	var out []Record
	for _, key := range keys {
		if len(out) >= n {
			break
		}

		data, err := s.store.Fetch(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("skipping unreadable history record")
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("skipping malformed history record")
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}
