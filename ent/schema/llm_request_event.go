package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent is one explanation call, successful or not. The
// `llm usage` command reports on these rows.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{Appended{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider").NotEmpty(),
		field.String("model").Default(""),
		field.String("purpose").
			Default("unknown").
			Comment("explanation or conn_check"),
		field.Int("input_tokens").Default(0),
		field.Int("output_tokens").Default(0),
		field.Int64("latency_ms").
			Default(0).
			Comment("Includes vendor-side queueing, excludes retry waits"),
		field.Bool("success"),
		field.String("error_kind").
			Default("").
			Comment("rate-limited, truncated and so on; empty on success"),
		field.String("error_message").Default(""),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("provider", "model", "purpose"),
	}
}
