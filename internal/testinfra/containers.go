package testinfra

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mssql"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MSSQLImage    = "mcr.microsoft.com/mssql/server:2022-CU14-ubuntu-22.04"
	MSSQLUser     = "sa"
	MSSQLPassword = "Csvstage!Passw0rd"
)

type MSSQLContainer struct {
	*mssql.MSSQLServerContainer
	ConnString string
}

// StartMSSQL starts a SQL Server container with encryption disabled.
func StartMSSQL(ctx context.Context) (*MSSQLContainer, error) {
	ctr, err := mssql.Run(ctx,
		MSSQLImage,
		mssql.WithAcceptEULA(),
		mssql.WithPassword(MSSQLPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Recovery is complete").
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start mssql: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "encrypt=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &MSSQLContainer{MSSQLServerContainer: ctr, ConnString: connStr}, nil
}

// CopyDrop copies the regular files of localDir into containerDir so that
// BULK INSERT running inside the container can read them.
func (c *MSSQLContainer) CopyDrop(ctx context.Context, localDir, containerDir string) error {
	code, out, err := c.Exec(ctx, []string{"mkdir", "-p", containerDir})
	if err != nil {
		return fmt.Errorf("create %s: %w", containerDir, err)
	}
	if code != 0 {
		msg, _ := io.ReadAll(out)
		return fmt.Errorf("create %s: exit %d: %s", containerDir, code, msg)
	}

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", localDir, err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(localDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if err := c.CopyToContainer(ctx, data, path.Join(containerDir, entry.Name()), 0o644); err != nil {
			return fmt.Errorf("copy %s: %w", entry.Name(), err)
		}
	}
	return nil
}
