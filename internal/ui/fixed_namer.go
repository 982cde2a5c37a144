package ui

import (
	"context"

	"github.com/vvka-141/csvstage/internal/db"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// FixedTableNamer supplies a table name taken from a flag, the environment
// or csvstage.yaml. No prompt is shown.
type FixedTableNamer struct {
	name string
}

// NewFixedTableNamer creates a namer returning name.
func NewFixedTableNamer(name string) csvstage.TableNamer {
	return &FixedTableNamer{name: name}
}

// TableName validates and returns the configured name.
func (n *FixedTableNamer) TableName(ctx context.Context) (string, error) {
	if err := db.ValidateTableName(n.name); err != nil {
		return "", err
	}
	return n.name, nil
}

var _ csvstage.TableNamer = (*FixedTableNamer)(nil)
