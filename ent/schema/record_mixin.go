package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// RecordMixin provides the ordering fields shared by snapshots and events.
type RecordMixin struct {
	mixin.Schema
}

func (RecordMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Immutable().
			Comment("Global sequence number shared by snapshots and events"),
		field.Int64("created_at").
			Immutable().
			Comment("UTC unix nanoseconds"),
	}
}
