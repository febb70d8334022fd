package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var userColumns = []string{
	"id", "uid", "username", "score", "completed_exercises", "created_at", "updated_at",
}

// userRepo implements UserRepo with ent's SQL builder.
type userRepo struct {
	s *Store
}

func (r *userRepo) EnsureUser(ctx context.Context, uid, username string) (*User, error) {
	now := r.s.now()
	insert := builder().Insert("users").
		Columns("uid", "username", "score", "completed_exercises", "created_at", "updated_at").
		Values(uid, username, 0, 0, now, now)
	if username != "" {
		insert.OnConflict(
			entsql.ConflictColumns("uid"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("username")
			}),
		)
	} else {
		insert.OnConflict(entsql.ConflictColumns("uid"), entsql.DoNothing())
	}

	q, args := insert.Query()
	if err := r.s.drv.Exec(ctx, q, args, nil); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return r.Totals(ctx, uid)
}

func (r *userRepo) IncrementTotals(ctx context.Context, uid, username string, points, exercises int) (*User, error) {
	if points < 0 || exercises < 0 {
		return nil, fmt.Errorf("increment totals: negative delta (%d, %d)", points, exercises)
	}

	tx, err := r.s.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin increment: %w", err)
	}

	now := r.s.now()
	q, args := builder().Insert("users").
		Columns("uid", "username", "score", "completed_exercises", "created_at", "updated_at").
		Values(uid, username, points, exercises, now, now).
		OnConflict(
			entsql.ConflictColumns("uid"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("score", points)
				u.Add("completed_exercises", exercises)
				u.Set("updated_at", now)
			}),
		).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("increment totals: %w", err)
	}

	u, err := queryUser(ctx, tx, uid)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit increment: %w", err)
	}
	return u, nil
}

func (r *userRepo) Totals(ctx context.Context, uid string) (*User, error) {
	return queryUser(ctx, r.s.drv, uid)
}

func (r *userRepo) TopUsers(ctx context.Context, limit int) ([]User, error) {
	sel := builder().Select(userColumns...).
		From(builder().Table("users")).
		Where(entsql.GT("score", 0)).
		OrderBy(entsql.Desc("score"), entsql.Asc("updated_at"), entsql.Asc("username"))
	if limit > 0 {
		sel.Limit(limit)
	}

	var users []User
	if err := scanAll(ctx, r.s.drv, sel, &users); err != nil {
		return nil, fmt.Errorf("query top users: %w", err)
	}
	return users, nil
}

func (r *userRepo) Rank(ctx context.Context, uid string) (int, error) {
	u, err := r.Totals(ctx, uid)
	if err != nil {
		return 0, err
	}
	if u.Score <= 0 {
		return 0, ErrNotFound
	}

	q, args := builder().Select(entsql.Count("*")).
		From(builder().Table("users")).
		Where(entsql.Or(
			entsql.GT("score", u.Score),
			entsql.And(entsql.EQ("score", u.Score), entsql.LT("updated_at", u.UpdatedAt)),
			entsql.And(
				entsql.EQ("score", u.Score),
				entsql.EQ("updated_at", u.UpdatedAt),
				entsql.LT("username", u.Username),
			),
		)).
		Query()

	var rows entsql.Rows
	if err := r.s.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, fmt.Errorf("query rank: %w", err)
	}
	defer rows.Close()
	ahead, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("scan rank: %w", err)
	}
	return ahead + 1, nil
}

func queryUser(ctx context.Context, conn dialect.ExecQuerier, uid string) (*User, error) {
	sel := builder().Select(userColumns...).
		From(builder().Table("users")).
		Where(entsql.EQ("uid", uid)).
		Limit(1)

	var users []User
	if err := scanAll(ctx, conn, sel, &users); err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

// scanAll runs a selector and scans every row into dst, a pointer to a
// slice of structs tagged with `sql` column names.
func scanAll(ctx context.Context, conn dialect.ExecQuerier, sel *entsql.Selector, dst any) error {
	q, args := sel.Query()
	var rows entsql.Rows
	if err := conn.Query(ctx, q, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dst)
}
