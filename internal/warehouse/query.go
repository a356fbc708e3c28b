package warehouse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/animus-labs/infersync/internal/domain"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdent(name string) error {
	if !identPattern.MatchString(strings.TrimSpace(name)) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// validRelation accepts bare and schema-qualified relation names.
func validRelation(name string) error {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) == 0 || len(parts) > 2 {
		return fmt.Errorf("invalid relation %q", name)
	}
	for _, part := range parts {
		if err := validIdent(part); err != nil {
			return fmt.Errorf("invalid relation %q", name)
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.TrimSpace(name) + `"`
}

func quoteRelation(name string) string {
	parts := strings.Split(strings.TrimSpace(name), ".")
	for i, part := range parts {
		parts[i] = quoteIdent(part)
	}
	return strings.Join(parts, ".")
}

// buildUpsertQuery builds one keyed upsert statement. Non-key columns
// are replaced from the incoming row; a row consisting solely of key
// columns degrades to insert-if-absent.
func buildUpsertQuery(relation string, columns []string, keys []string) (string, error) {
	if err := validRelation(relation); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("upsert requires at least one column")
	}
	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if err := validIdent(key); err != nil {
			return "", err
		}
		keySet[strings.TrimSpace(key)] = struct{}{}
	}

	quotedCols := make([]string, 0, len(columns))
	placeholders := make([]string, 0, len(columns))
	updates := make([]string, 0, len(columns))
	for i, col := range columns {
		if err := validIdent(col); err != nil {
			return "", err
		}
		quoted := quoteIdent(col)
		quotedCols = append(quotedCols, quoted)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		if _, isKey := keySet[strings.TrimSpace(col)]; !isKey {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", quoted, quoted))
		}
	}

	quotedKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		quotedKeys = append(quotedKeys, quoteIdent(key))
	}

	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(updates, ", ")
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		quoteRelation(relation),
		strings.Join(quotedCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(quotedKeys, ", "),
		conflict,
	)
	return query, nil
}

// buildStateQuery reads the output snapshot the policies need: key
// columns, status, and the freshness column when configured.
func buildStateQuery(relation string, keys []string, statusColumn, updatedColumn string) (string, error) {
	if err := validRelation(relation); err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("state query requires at least one key")
	}
	cols := make([]string, 0, len(keys)+2)
	for _, key := range keys {
		if err := validIdent(key); err != nil {
			return "", err
		}
		cols = append(cols, quoteIdent(key))
	}
	if err := validIdent(statusColumn); err != nil {
		return "", err
	}
	cols = append(cols, fmt.Sprintf("COALESCE(%s::text, '')", quoteIdent(statusColumn)))
	if strings.TrimSpace(updatedColumn) != "" {
		if err := validIdent(updatedColumn); err != nil {
			return "", err
		}
		cols = append(cols, quoteIdent(updatedColumn))
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteRelation(relation)), nil
}

// buildCreateQuery builds the output relation's DDL. Column types are
// inferred from the seed rows; with an empty seed the relation starts
// with key and status columns only and grows on the first merge.
func buildCreateQuery(relation string, rows []domain.Row, keys []string, statusColumn string) (string, error) {
	if err := validRelation(relation); err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("create requires at least one key")
	}

	types := map[string]string{}
	for _, key := range keys {
		if err := validIdent(key); err != nil {
			return "", err
		}
		types[strings.TrimSpace(key)] = "TEXT"
	}
	if err := validIdent(statusColumn); err != nil {
		return "", err
	}
	types[strings.TrimSpace(statusColumn)] = "TEXT"
	for _, row := range rows {
		for col, value := range row {
			if err := validIdent(col); err != nil {
				return "", err
			}
			if _, ok := types[col]; !ok {
				types[col] = sqlType(value)
			}
		}
	}

	cols := make([]string, 0, len(types))
	for col := range types {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	defs := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		defs = append(defs, fmt.Sprintf("%s %s", quoteIdent(col), types[col]))
	}
	quotedKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		quotedKeys = append(quotedKeys, quoteIdent(key))
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quotedKeys, ", ")))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteRelation(relation), strings.Join(defs, ", ")), nil
}

func sqlType(value any) string {
	switch value.(type) {
	case string, []byte, nil:
		return "TEXT"
	case bool:
		return "BOOLEAN"
	case int, int32, int64:
		return "BIGINT"
	case float32, float64:
		return "DOUBLE PRECISION"
	case time.Time:
		return "TIMESTAMPTZ"
	default:
		return "JSONB"
	}
}
