package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "orders", false},
		{"with underscore", "stg_test", false},
		{"leading underscore", "_tmp", false},
		{"digits", "load2024", false},
		{"max length", strings.Repeat("a", 128), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"leading digit", "1orders", true},
		{"space", "my table", true},
		{"semicolon injection", "t; DROP TABLE users", true},
		{"bracket", "t]x", true},
		{"dash", "stg-test", true},
		{"dot", "dbo.orders", true},
		{"quote", "o'brien", true},
		{"non-ascii", "tablé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTableName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, csvstage.ErrInvalidIdentifier)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateColumnNames(t *testing.T) {
	tests := []struct {
		name    string
		columns csvstage.ColumnSchema
		wantErr bool
	}{
		{"simple", csvstage.ColumnSchema{"id", "name"}, false},
		{"spaces and symbols", csvstage.ColumnSchema{"first name", "amount ($)", "a]b"}, false},
		{"empty list", csvstage.ColumnSchema{}, true},
		{"empty name", csvstage.ColumnSchema{"id", ""}, true},
		{"duplicate", csvstage.ColumnSchema{"id", "id"}, true},
		{"case-insensitive duplicate", csvstage.ColumnSchema{"Id", "ID"}, true},
		{"control character", csvstage.ColumnSchema{"id\x00"}, true},
		{"too long", csvstage.ColumnSchema{strings.Repeat("c", 129)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumnNames(tt.columns)
			if tt.wantErr {
				assert.ErrorIs(t, err, csvstage.ErrInvalidIdentifier)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateColumnType(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"VARCHAR(255)", "VARCHAR(255)", false},
		{"varchar(50)", "VARCHAR(50)", false},
		{"nvarchar(max)", "NVARCHAR(MAX)", false},
		{"NVARCHAR( 4000 )", "NVARCHAR(4000)", false},
		{"VARCHAR(8000)", "VARCHAR(8000)", false},
		{"VARCHAR(8001)", "", true},
		{"NVARCHAR(4001)", "", true},
		{"VARCHAR(0)", "", true},
		{"INT", "", true},
		{"VARCHAR(10)); DROP TABLE x; --", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateColumnType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, csvstage.ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "[orders]", QuoteIdentifier("orders"))
	assert.Equal(t, "[first name]", QuoteIdentifier("first name"))
	assert.Equal(t, "[a]]b]", QuoteIdentifier("a]b"))
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "[dbo].[stg_test]", QualifiedName(csvstage.StagingTable{Schema: "dbo", Name: "stg_test"}))
	assert.Equal(t, "[stg_test]", QualifiedName(csvstage.StagingTable{Name: "stg_test"}))
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'/data/a.csv'", QuoteLiteral("/data/a.csv"))
	assert.Equal(t, "'/data/o''brien.csv'", QuoteLiteral("/data/o'brien.csv"))
}
