package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records practice session lifecycle events (start/end).
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{Appended{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID grouping events in a session"),
		field.String("uid").
			Default(""),
		field.String("action").
			NotEmpty().
			Comment("start or end"),
		field.String("topics").
			Default("").
			Comment("Comma-separated topic selection"),
		field.String("difficulty").
			Default(""),
		field.Int("exercises_completed").
			Default(0).
			Comment("On end only"),
		field.Int("correct_answers").
			Default(0).
			Comment("On end only"),
		field.Int("score").
			Default(0).
			Comment("On end only"),
		field.Int("duration_secs").
			Default(0).
			Comment("On end only"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("action"),
	}
}
