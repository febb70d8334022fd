package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ScoreEvent records one resolved exercise. Daily, weekly and per-topic
// boards are aggregated from these rows.
type ScoreEvent struct {
	ent.Schema
}

func (ScoreEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{Appended{}}
}

func (ScoreEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("uid").
			NotEmpty().
			Comment("Principal that resolved the exercise"),
		field.String("username").
			Default(""),
		field.String("session_id").
			Default("").
			Comment("Practice session UUID"),
		field.String("exercise_id").
			NotEmpty(),
		field.String("topic").
			NotEmpty(),
		field.String("difficulty").
			NotEmpty().
			Comment("easy, medium or hard"),
		field.Int("points").
			Default(0).
			Comment("0 when the exercise was exhausted"),
		field.Int("exercises").
			Default(1),
	}
}

func (ScoreEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("uid"),
		index.Fields("topic"),
		index.Fields("exercise_id").Unique(),
	}
}
