package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions mirror ent/schema. A column added there must be added
// here too; TestTablesMatchEntSchema checks the two agree.
const (
	tableSnapshots = "snapshots"
	tableEvents    = "events"
)

var (
	// SnapshotsColumns holds the columns for the "snapshots" table.
	SnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
	}
	// SnapshotsTable holds the schema information for the "snapshots" table.
	SnapshotsTable = &schema.Table{
		Name:       tableSnapshots,
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_sequence", Columns: []*schema.Column{SnapshotsColumns[1]}},
		},
	}

	// EventsColumns holds the columns for the "events" table.
	EventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "kind", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "module_id", Type: field.TypeString, Default: ""},
		{Name: "payload", Type: field.TypeString, Size: 2147483647},
	}
	// EventsTable holds the schema information for the "events" table.
	EventsTable = &schema.Table{
		Name:       tableEvents,
		Columns:    EventsColumns,
		PrimaryKey: []*schema.Column{EventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "event_sequence", Unique: true, Columns: []*schema.Column{EventsColumns[1]}},
			{Name: "event_kind_sequence", Columns: []*schema.Column{EventsColumns[3], EventsColumns[1]}},
			{Name: "event_session_id", Columns: []*schema.Column{EventsColumns[4]}},
		},
	}

	// Tables holds every table the store owns.
	Tables = []*schema.Table{
		SnapshotsTable,
		EventsTable,
	}
)

// migrate creates missing tables and indexes through ent's migration engine.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
