package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

// Embedded carries the SQL migrations compiled into the binary.
//
//go:embed migrations/*.sql
var Embedded embed.FS

// goose keeps its base filesystem and dialect in package globals.
var gooseMu sync.Mutex

func withGoose(fsys fs.FS, fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}

// Run executes a goose command (up, down, status, ...) against dir on disk.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return run(ctx, db, nil, dir, command, args...)
}

// RunEmbedded executes a goose command against the migrations bundled in the binary.
func RunEmbedded(ctx context.Context, db *sql.DB, command string, args ...string) error {
	return run(ctx, db, Embedded, embeddedDir, command, args...)
}

func run(ctx context.Context, db *sql.DB, fsys fs.FS, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	return withGoose(fsys, func() error {
		if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// MigrateToVersion moves the schema up or down to targetVersion (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil || len(targetVersion) != len(versionLayout) {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", targetVersion)
	}

	return withGoose(nil, func() error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		switch {
		case current == target:
			return nil
		case current < target:
			if err := goose.UpToContext(ctx, db, dir, target); err != nil {
				return fmt.Errorf("goose up-to %d: %w", target, err)
			}
		default:
			if err := goose.DownToContext(ctx, db, dir, target); err != nil {
				return fmt.Errorf("goose down-to %d: %w", target, err)
			}
		}
		return nil
	})
}
