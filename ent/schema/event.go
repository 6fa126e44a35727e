package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Event is one append-only log entry. The payload shape depends on kind.
type Event struct {
	ent.Schema
}

func (Event) Mixin() []ent.Mixin {
	return []ent.Mixin{RecordMixin{}}
}

func (Event) Fields() []ent.Field {
	return []ent.Field{
		field.String("kind").
			NotEmpty().
			Comment("session, answer, hint, module or llm_request"),
		field.String("session_id").
			Default("").
			Comment("Quiz attempt the event belongs to, if any"),
		field.String("module_id").
			Default("").
			Comment("Catalog module the event belongs to, if any"),
		field.Text("payload").
			Comment("Kind-specific JSON"),
	}
}

func (Event) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("sequence").Unique(),
		index.Fields("kind", "sequence"),
		index.Fields("session_id"),
	}
}
