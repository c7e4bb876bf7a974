package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// GemRepo implements ports.GemRepository with pgx. The store mirrors the
// in-memory catalog wholesale: ReplaceAll swaps the full list inside one
// transaction, LoadAll reads it back in id order.
type GemRepo struct {
	db *DB
}

// NewGemRepo creates a new GemRepo.
func NewGemRepo(db *DB) *GemRepo {
	return &GemRepo{db: db}
}

// LoadAll returns every persisted gem in insertion (id) order.
func (r *GemRepo) LoadAll(ctx context.Context) ([]domain.Gem, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), tags, COALESCE(price, ''), lat, lon, created_at
		FROM gems
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load gems: %w", err)
	}
	defer rows.Close()

	var gems []domain.Gem
	for rows.Next() {
		var g domain.Gem
		var tags []string
		if err := rows.Scan(
			&g.ID, &g.Name, &g.Description, &tags, &g.Price,
			&g.Position.Lat, &g.Position.Lon, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gem: %w", err)
		}
		for _, t := range tags {
			g.Tags = append(g.Tags, domain.Tag(t))
		}
		gems = append(gems, g)
	}
	return gems, rows.Err()
}

// ReplaceAll overwrites the stored list with the given snapshot.
func (r *GemRepo) ReplaceAll(ctx context.Context, gems []domain.Gem) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE gems`); err != nil {
		return fmt.Errorf("truncate gems: %w", err)
	}

	batch := &pgx.Batch{}
	for _, g := range gems {
		tags := make([]string, len(g.Tags))
		for i, t := range g.Tags {
			tags[i] = string(t)
		}
		batch.Queue(`
			INSERT INTO gems (id, name, description, tags, price, lat, lon, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, g.ID, g.Name, g.Description, tags, string(g.Price),
			g.Position.Lat, g.Position.Lon, g.CreatedAt)
	}
	br := tx.SendBatch(ctx, batch)
	for range gems {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}
