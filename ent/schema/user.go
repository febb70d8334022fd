package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// User is the cumulative score record of a signed-in principal.
type User struct {
	ent.Schema
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("uid").
			NotEmpty().
			Unique().
			Immutable().
			Comment("Principal ID from the identity provider"),
		field.String("username").
			Default("").
			Comment("Display name shown on leaderboards"),
		field.Int("score").
			Default(0).
			Comment("Lifetime points"),
		field.Int("completed_exercises").
			Default(0).
			Comment("Lifetime resolved exercises, correct or exhausted"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now).
			Comment("Last increment; earlier wins leaderboard ties"),
	}
}

func (User) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("score", "updated_at"),
	}
}
