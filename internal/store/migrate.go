package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/schema/field"

	"github.com/abhisek/mathdrill/ent/schema"
)

// table binds a SQL table name to the ent schema describing it.
type table struct {
	name   string
	schema ent.Interface
}

var tables = []table{
	{"users", schema.User{}},
	{"score_events", schema.ScoreEvent{}},
	{"session_events", schema.SessionEvent{}},
	{"llm_request_events", schema.LLMRequestEvent{}},
}

// migrate creates any missing table and index. Column definitions are read
// from the ent schema descriptors so the schema package stays the single
// source of truth.
func migrate(ctx context.Context, drv dialect.Driver) error {
	for _, t := range tables {
		for _, stmt := range createStatements(t) {
			if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
				return fmt.Errorf("create %s: %w", t.name, err)
			}
		}
	}
	return migrateSequence(ctx, drv)
}

func createStatements(t table) []string {
	cols := []string{"`id` INTEGER PRIMARY KEY AUTOINCREMENT"}
	for _, f := range schemaFields(t.schema) {
		cols = append(cols, columnDef(f.Descriptor()))
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (%s)", t.name, strings.Join(cols, ", ")),
	}

	var indexes []ent.Index
	for _, m := range t.schema.Mixin() {
		indexes = append(indexes, m.Indexes()...)
	}
	indexes = append(indexes, t.schema.Indexes()...)
	for _, idx := range indexes {
		d := idx.Descriptor()
		kind := "INDEX"
		if d.Unique {
			kind = "UNIQUE INDEX"
		}
		quoted := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			quoted[i] = "`" + f + "`"
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %s IF NOT EXISTS `%s_%s` ON `%s` (%s)",
			kind, t.name, strings.Join(d.Fields, "_"), t.name, strings.Join(quoted, ", ")))
	}
	return stmts
}

// schemaFields returns mixin fields followed by the schema's own fields.
func schemaFields(s ent.Interface) []ent.Field {
	var fields []ent.Field
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
	}
	return append(fields, s.Fields()...)
}

func columnDef(d *field.Descriptor) string {
	def, _ := entsql.Column(d.Name).Type(sqliteType(d.Info.Type)).Query()
	if !d.Optional {
		def += " NOT NULL"
	}
	if d.Unique {
		def += " UNIQUE"
	}
	if lit, ok := defaultLiteral(d.Default); ok {
		def += " DEFAULT " + lit
	}
	return def
}

func sqliteType(t field.Type) string {
	switch t {
	case field.TypeInt, field.TypeInt8, field.TypeInt16, field.TypeInt32, field.TypeInt64,
		field.TypeUint, field.TypeUint8, field.TypeUint16, field.TypeUint32, field.TypeUint64:
		return "INTEGER"
	case field.TypeBool:
		return "BOOLEAN"
	case field.TypeFloat32, field.TypeFloat64:
		return "REAL"
	case field.TypeTime:
		return "DATETIME"
	case field.TypeJSON:
		return "JSON"
	default:
		return "TEXT"
	}
}

// defaultLiteral renders constant defaults. Function defaults such as
// time.Now are applied by the repositories on insert.
func defaultLiteral(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}
