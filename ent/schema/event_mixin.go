package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// Appended is mixed into every append-only log table. Rows are never
// updated, so both columns are immutable.
type Appended struct {
	mixin.Schema
}

func (Appended) Fields() []ent.Field {
	return []ent.Field{
		// Shared across all log tables so a replay can interleave them.
		field.Int64("sequence").
			Unique().
			Immutable(),
		field.Time("timestamp").
			Default(time.Now).
			Immutable().
			Comment("UTC; daily and weekly windows filter on it"),
	}
}

func (Appended) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
	}
}
