package db

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/vvka-141/csvstage/pkg/csvstage"
)

var (
	tableNamePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	columnTypePattern = regexp.MustCompile(`^(N?VARCHAR)\((MAX|[0-9]+)\)$`)
)

// ValidateTableName checks a staging table or schema name against the allow-list:
// ASCII letters, digits and underscore, starting with a letter or underscore.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name is empty: %w", csvstage.ErrInvalidIdentifier)
	}
	if len(name) > csvstage.MaxIdentifierLength {
		return fmt.Errorf("table name exceeds %d characters: %w", csvstage.MaxIdentifierLength, csvstage.ErrInvalidIdentifier)
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("table name %q must contain only letters, digits and underscores and start with a letter or underscore: %w",
			name, csvstage.ErrInvalidIdentifier)
	}
	return nil
}

// ValidateColumnNames checks header-derived column names before they are used in DDL.
// Names are quoted on output, so any printable text is accepted; duplicates are
// rejected case-insensitively because SQL Server column names are.
func ValidateColumnNames(columns csvstage.ColumnSchema) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns: %w", csvstage.ErrInvalidIdentifier)
	}

	seen := make(map[string]int, len(columns))
	for i, col := range columns {
		if col == "" {
			return fmt.Errorf("column %d has an empty name: %w", i+1, csvstage.ErrInvalidIdentifier)
		}
		if len([]rune(col)) > csvstage.MaxIdentifierLength {
			return fmt.Errorf("column %q exceeds %d characters: %w", col, csvstage.MaxIdentifierLength, csvstage.ErrInvalidIdentifier)
		}
		for _, r := range col {
			if unicode.IsControl(r) {
				return fmt.Errorf("column %q contains a control character: %w", col, csvstage.ErrInvalidIdentifier)
			}
		}
		key := strings.ToLower(col)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("column %q duplicates column %d: %w", col, prev+1, csvstage.ErrInvalidIdentifier)
		}
		seen[key] = i
	}
	return nil
}

// ValidateColumnType accepts VARCHAR(n), NVARCHAR(n) and their MAX forms and
// returns the normalized upper-case spelling.
func ValidateColumnType(columnType string) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(columnType, " ", ""))
	m := columnTypePattern.FindStringSubmatch(normalized)
	if m == nil {
		return "", fmt.Errorf("column type %q is not VARCHAR(n) or NVARCHAR(n): %w", columnType, csvstage.ErrInvalidIdentifier)
	}
	if m[2] == "MAX" {
		return normalized, nil
	}

	limit := 8000
	if m[1] == "NVARCHAR" {
		limit = 4000
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 || n > limit {
		return "", fmt.Errorf("column type %q length must be between 1 and %d: %w", columnType, limit, csvstage.ErrInvalidIdentifier)
	}
	return fmt.Sprintf("%s(%d)", m[1], n), nil
}

// QuoteIdentifier bracket-quotes an identifier, doubling any closing bracket.
func QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// QualifiedName returns [schema].[name] for a staging table.
func QualifiedName(table csvstage.StagingTable) string {
	if table.Schema == "" {
		return QuoteIdentifier(table.Name)
	}
	return QuoteIdentifier(table.Schema) + "." + QuoteIdentifier(table.Name)
}

// QuoteLiteral renders a string literal, doubling single quotes.
// Used where T-SQL does not accept a bound parameter, such as BULK INSERT options.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
