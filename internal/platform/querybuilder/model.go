package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// modelColumn maps a db-tagged struct field to its column.
type modelColumn struct {
	name  string
	index int
}

var modelColumnsCache sync.Map // reflect.Type -> []modelColumn

// InsertModel builds a single-row insert from the exported db-tagged fields of
// model, in declaration order, followed by suffix.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "", nil, fmt.Errorf("insert into %s: nil model", table)
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("insert into %s: model is %s, want struct", table, value.Kind())
	}

	columns := columnsOf(value.Type())
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("insert into %s: %s has no db columns", table, value.Type())
	}

	names := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, col := range columns {
		names[i] = col.name
		values[i] = value.Field(col.index).Interface()
	}

	return InsertInto(table).
		Columns(names...).
		Values(values...).
		Suffix(suffix).
		ToSQL()
}

func columnsOf(typ reflect.Type) []modelColumn {
	if cached, ok := modelColumnsCache.Load(typ); ok {
		return cached.([]modelColumn)
	}

	var columns []modelColumn
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, modelColumn{name: name, index: i})
	}

	actual, _ := modelColumnsCache.LoadOrStore(typ, columns)
	return actual.([]modelColumn)
}
