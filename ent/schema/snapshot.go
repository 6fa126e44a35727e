package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Snapshot captures the learner's progress, ledger and profile so startup
// does not replay the event log.
type Snapshot struct {
	ent.Schema
}

func (Snapshot) Mixin() []ent.Mixin {
	return []ent.Mixin{RecordMixin{}}
}

func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.Text("data").
			Comment("Versioned learner state as JSON"),
	}
}

func (Snapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("sequence"),
	}
}
