package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"newsdigest/internal/database"
)

// Store persists named blobs. WriteBlob replaces any previous content under
// the same name in full or not at all.
type Store interface {
	WriteBlob(ctx context.Context, name string, content []byte) error
	ReadBlob(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// Target is a parsed output location.
type Target struct {
	Kind string // file, sqlite or postgres
	// Location is the directory for files, the database path for sqlite and
	// the DSN for postgres.
	Location string
	Name     string
}

// ParseTarget understands plain paths, file:// URLs, sqlite://path#name and
// postgres://dsn#name. defaultName is used when a database target carries
// no fragment.
func ParseTarget(target, defaultName string) (Target, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Target{}, fmt.Errorf("empty snapshot target")
	}

	switch {
	case strings.HasPrefix(target, "sqlite://"):
		location, name, _ := strings.Cut(strings.TrimPrefix(target, "sqlite://"), "#")
		if location == "" {
			return Target{}, fmt.Errorf("sqlite target %q has no database path", target)
		}
		return Target{Kind: "sqlite", Location: location, Name: orDefault(name, defaultName)}, nil

	case strings.HasPrefix(target, "postgres://"), strings.HasPrefix(target, "postgresql://"):
		dsn, name, _ := strings.Cut(target, "#")
		return Target{Kind: "postgres", Location: dsn, Name: orDefault(name, defaultName)}, nil

	case strings.HasPrefix(target, "file://"):
		u, err := url.Parse(target)
		if err != nil {
			return Target{}, fmt.Errorf("invalid file target: %w", err)
		}
		if u.Path == "" || strings.HasSuffix(u.Path, "/") {
			return Target{}, fmt.Errorf("file target %q has no file name", target)
		}
		return Target{Kind: "file", Location: filepath.Dir(u.Path), Name: filepath.Base(u.Path)}, nil

	case strings.Contains(target, "://"):
		return Target{}, fmt.Errorf("unsupported snapshot target %q", target)
	}

	if strings.HasSuffix(target, "/") {
		return Target{}, fmt.Errorf("file target %q has no file name", target)
	}
	return Target{Kind: "file", Location: filepath.Dir(target), Name: filepath.Base(target)}, nil
}

// Open connects to the store behind t.
func Open(ctx context.Context, t Target) (Store, error) {
	switch t.Kind {
	case "file":
		return NewFileStore(t.Location), nil
	case "sqlite":
		db, err := database.NewDB(t.Location, database.DefaultConfig())
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := database.NewPostgres(ctx, t.Location)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unsupported snapshot target kind %q", t.Kind)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
