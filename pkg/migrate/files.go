package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

var (
	fileNameRe     = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
)

type migrationFile struct {
	Version int64
	Name    string
}

func parseFileName(name string) (migrationFile, error) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return migrationFile{}, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
	}
	version, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return migrationFile{}, fmt.Errorf("invalid migration version in %q: %w", name, err)
	}
	return migrationFile{Version: version, Name: m[2]}, nil
}

// ValidateDir checks the migrations in dir on disk. See ValidateFS.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks every .sql file under dir for a goose filename, unique versions, an Up
// section ahead of a Down section and balanced statement markers. All problems are reported.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	seen := map[int64]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		file, err := parseFileName(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if prev, ok := seen[file.Version]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %d in %q and %q", file.Version, prev, name))
		}
		seen[file.Version] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkBody(name, string(body)))
	}
	return errs
}

func checkBody(name, txt string) error {
	up := strings.Index(txt, "-- +goose Up")
	down := strings.Index(txt, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	case down < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	case down < up:
		return fmt.Errorf("migration %q declares Down before Up", name)
	}
	begins := strings.Count(txt, "-- +goose StatementBegin")
	ends := strings.Count(txt, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("migration %q has %d StatementBegin and %d StatementEnd markers", name, begins, ends)
	}
	return nil
}

// CreateSQLMigration writes an empty goose migration named <UTC timestamp>_<name>.sql into dir.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version, err := strconv.ParseInt(now.Format(versionLayout), 10, 64)
	if err != nil {
		return "", err
	}
	latest, err := latestVersion(dir)
	if err != nil {
		return "", err
	}
	if version <= latest {
		return "", fmt.Errorf("version %d is not newer than existing migration %d", version, latest)
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))
	template := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, safe, safe)

	f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", fullpath, err)
	}
	defer f.Close()
	if _, err := f.WriteString(template); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func latestVersion(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir %q: %w", dir, err)
	}
	var latest int64
	for _, e := range entries {
		if file, err := parseFileName(e.Name()); err == nil && file.Version > latest {
			latest = file.Version
		}
	}
	return latest, nil
}
