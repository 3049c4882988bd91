package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WordStore reads and writes the words table used as an alternative word
// source to the flat file.
type WordStore struct {
	db *pgxpool.Pool
}

func NewWordStore(db *pgxpool.Pool) *WordStore {
	return &WordStore{db: db}
}

// List returns every stored word in insertion order.
func (s *WordStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT word FROM words ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	return out, nil
}

// Insert adds words, skipping blanks and ones already present. It returns
// how many rows were actually inserted.
func (s *WordStore) Insert(ctx context.Context, words []string) (int, error) {
	batch := &pgx.Batch{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		batch.Queue(`
			INSERT INTO words (word)
			VALUES ($1)
			ON CONFLICT (word) DO NOTHING
		`, w)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	n := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			return n, fmt.Errorf("insert words: %w", err)
		}
		n += int(tag.RowsAffected())
	}
	return n, nil
}
