package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Score, session and LLM events live in separate tables. A single counter
// row numbers all of them so they can be ordered against each other.
const sequenceTable = "event_sequence"

func migrateSequence(ctx context.Context, drv dialect.Driver) error {
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (`id` INTEGER PRIMARY KEY CHECK (`id` = 1), `value` INTEGER NOT NULL DEFAULT 0)", sequenceTable)
	if err := drv.Exec(ctx, create, []any{}, nil); err != nil {
		return fmt.Errorf("create %s: %w", sequenceTable, err)
	}
	q, args := builder().Insert(sequenceTable).
		Columns("id", "value").
		Values(1, 0).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if err := drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("seed %s: %w", sequenceTable, err)
	}
	return nil
}

// nextSequence bumps the counter and returns the new value. It must run
// inside tx so the number and the event row commit together.
func nextSequence(ctx context.Context, tx dialect.ExecQuerier) (int64, error) {
	q, args := builder().Update(sequenceTable).
		Add("value", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return 0, fmt.Errorf("bump sequence: %w", err)
	}

	q, args = builder().Select("value").
		From(builder().Table(sequenceTable)).
		Where(entsql.EQ("id", 1)).
		Query()
	var rows entsql.Rows
	if err := tx.Query(ctx, q, args, &rows); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	defer rows.Close()
	n, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, fmt.Errorf("scan sequence: %w", err)
	}
	return n, nil
}

// appendEvent inserts one event row stamped with the next sequence number.
// A failed insert rolls the counter back with it.
func (s *Store) appendEvent(ctx context.Context, insert func(seq int64) *entsql.InsertBuilder) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	seq, err := nextSequence(ctx, tx)
	if err != nil {
		tx.Rollback()
		return err
	}
	q, args := insert(seq).Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
