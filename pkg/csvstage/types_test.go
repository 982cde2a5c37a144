package csvstage_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vvka-141/csvstage/pkg/csvstage"
)

func validLoadConfig() csvstage.LoadConfig {
	return csvstage.LoadConfig{
		Connection: csvstage.ConnectionConfig{
			Server:   `sqlhost\STAGING`,
			Database: "imports",
		},
		SourcePath: "./drops",
		Load:       csvstage.DefaultLoadOptions(),
		Timeout:    time.Minute,
	}
}

func TestLoadConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *csvstage.LoadConfig)
		wantError bool
		contains  []string
	}{
		{
			name:   "valid trusted config",
			mutate: func(c *csvstage.LoadConfig) {},
		},
		{
			name: "valid sql config",
			mutate: func(c *csvstage.LoadConfig) {
				c.Connection.AuthMethod = csvstage.AuthMethodSQL
				c.Connection.Username = "loader"
			},
		},
		{
			name:      "missing server",
			mutate:    func(c *csvstage.LoadConfig) { c.Connection.Server = "" },
			wantError: true,
			contains:  []string{csvstage.EnvServerInstance},
		},
		{
			name: "all required values missing are reported together",
			mutate: func(c *csvstage.LoadConfig) {
				c.Connection.Server = ""
				c.Connection.Database = ""
				c.SourcePath = ""
			},
			wantError: true,
			contains:  []string{csvstage.EnvServerInstance, csvstage.EnvDatabase, csvstage.EnvCSVPath},
		},
		{
			name:      "sql auth without user",
			mutate:    func(c *csvstage.LoadConfig) { c.Connection.AuthMethod = csvstage.AuthMethodSQL },
			wantError: true,
			contains:  []string{csvstage.EnvUser},
		},
		{
			name:      "invalid auth method",
			mutate:    func(c *csvstage.LoadConfig) { c.Connection.AuthMethod = csvstage.AuthMethod(42) },
			wantError: true,
		},
		{
			name:      "negative timeout",
			mutate:    func(c *csvstage.LoadConfig) { c.Timeout = -time.Second },
			wantError: true,
			contains:  []string{"timeout"},
		},
		{
			name:      "first row zero",
			mutate:    func(c *csvstage.LoadConfig) { c.Load.FirstRow = 0 },
			wantError: true,
		},
		{
			name:      "malformed hex field terminator",
			mutate:    func(c *csvstage.LoadConfig) { c.Load.FieldTerminator = "0xZZ" },
			wantError: true,
			contains:  []string{"0xZZ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validLoadConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantError {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !errors.Is(err, csvstage.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q does not mention %q", err.Error(), want)
				}
			}
		})
	}
}

func TestColumnSchema_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b csvstage.ColumnSchema
		want bool
	}{
		{"identical", csvstage.ColumnSchema{"id", "name"}, csvstage.ColumnSchema{"id", "name"}, true},
		{"reordered", csvstage.ColumnSchema{"id", "name"}, csvstage.ColumnSchema{"name", "id"}, false},
		{"case differs", csvstage.ColumnSchema{"id", "Name"}, csvstage.ColumnSchema{"id", "name"}, false},
		{"inner whitespace differs", csvstage.ColumnSchema{"first name"}, csvstage.ColumnSchema{"first  name"}, false},
		{"extra column", csvstage.ColumnSchema{"id"}, csvstage.ColumnSchema{"id", "name"}, false},
		{"both empty", nil, csvstage.ColumnSchema{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadResult_UncommittedReportsZeroFiles(t *testing.T) {
	result := csvstage.LoadResult{
		Files: []csvstage.FileLoad{{Name: "a.csv", Rows: 3}, {Name: "b.csv", Rows: 5}},
	}

	if got := result.FilesLoaded(); got != 0 {
		t.Errorf("FilesLoaded() = %d for uncommitted result, want 0", got)
	}

	result.Committed = true
	if got := result.FilesLoaded(); got != 2 {
		t.Errorf("FilesLoaded() = %d, want 2", got)
	}
	if got := result.TotalRows(); got != 8 {
		t.Errorf("TotalRows() = %d, want 8", got)
	}
	if got := result.FormatRowCounts(); got != "{a.csv: 3, b.csv: 5}" {
		t.Errorf("FormatRowCounts() = %q", got)
	}
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    csvstage.AuthMethod
		wantErr bool
	}{
		{"", csvstage.AuthMethodTrusted, false},
		{"trusted", csvstage.AuthMethodTrusted, false},
		{"Integrated", csvstage.AuthMethodTrusted, false},
		{"sql", csvstage.AuthMethodSQL, false},
		{" azure ", csvstage.AuthMethodAzure, false},
		{"kerberos", csvstage.AuthMethodTrusted, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := csvstage.ParseAuthMethod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthMethod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, csvstage.ErrUnsupportedAuthMethod) {
				t.Errorf("ParseAuthMethod(%q) error = %v, want ErrUnsupportedAuthMethod", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAuthMethod(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeFieldTerminator(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"", ","},
		{",", ","},
		{";", ";"},
		{"||", "||"},
		{`\t`, "\t"},
		{"0x7C", "|"},
		{"0x3b", ";"},
	}

	for _, tt := range tests {
		got, err := csvstage.DecodeFieldTerminator(tt.term)
		if err != nil {
			t.Fatalf("DecodeFieldTerminator(%q) unexpected error: %v", tt.term, err)
		}
		if got != tt.want {
			t.Errorf("DecodeFieldTerminator(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}

	if _, err := csvstage.DecodeFieldTerminator("0x7"); !errors.Is(err, csvstage.ErrInvalidConfig) {
		t.Errorf("DecodeFieldTerminator(0x7) error = %v, want ErrInvalidConfig", err)
	}
}

func TestStagingTable_String(t *testing.T) {
	if got := (csvstage.StagingTable{Schema: "dbo", Name: "stg_test"}).String(); got != "dbo.stg_test" {
		t.Errorf("String() = %q", got)
	}
	if got := (csvstage.StagingTable{Name: "stg_test"}).String(); got != "stg_test" {
		t.Errorf("String() = %q", got)
	}
}
