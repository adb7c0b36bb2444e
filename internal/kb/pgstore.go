package kb

import (
	"context"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/xiexing/askhub/internal/model"
)

// pgStore keeps the snapshot in Postgres with a pgvector column. The
// wholesale-rebuild contract maps onto a single transaction: delete the old
// generation and insert the new one, so readers never observe a mix.
type pgStore struct {
	db *sqlx.DB
}

func NewPGStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

func (p *pgStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kb_chunks`); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	rows := make([]map[string]interface{}, 0, len(snap.Chunks))
	for i, chunk := range snap.Chunks {
		rows = append(rows, map[string]interface{}{
			"source_order": chunk.SourceOrder,
			"content":      chunk.Text,
			"model_name":   snap.Model,
			"embedding":    pgvector.NewVector(snap.Vectors[i]),
		})
	}
	if len(rows) > 0 {
		sqlStr, args, err := builder.BuildInsert("kb_chunks", rows)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlStr), args...); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}
	return tx.Commit()
}

func (p *pgStore) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := p.db.QueryxContext(ctx,
		`SELECT source_order, content, model_name, embedding FROM kb_chunks ORDER BY source_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := &Snapshot{}
	for rows.Next() {
		var (
			order   int
			content string
			mdl     string
			vec     pgvector.Vector
		)
		if err := rows.Scan(&order, &content, &mdl, &vec); err != nil {
			return nil, err
		}
		snap.Model = mdl
		snap.Vectors = append(snap.Vectors, vec.Slice())
		snap.Chunks = append(snap.Chunks, model.DocumentChunk{Text: content, SourceOrder: order})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(snap.Chunks) == 0 {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}
