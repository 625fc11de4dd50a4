// Command migration manages the match-log schema with golang-migrate.
// It reads DB_URL and applies the SQL files under db/migrations.
package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		log.Fatal("DB_URL is required")
	}
	dbURL = normalizeDBURL(dbURL)

	dir, err := migrationsDir()
	if err != nil {
		log.Fatalf("resolve migrations dir: %v", err)
	}

	source := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(source, dbURL)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Printf("close migration source: %v", srcErr)
		}
		if dbErr != nil {
			log.Printf("close migration db: %v", dbErr)
		}
	}()

	if err := run(m, os.Args[1], os.Args[2:], source); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, command string, args []string, source string) error {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "up":
		if err := ignoreNoChange(m.Up()); err != nil {
			return err
		}
		log.Printf("migrations applied (source=%s)", source)
	case "down":
		steps := 1
		if len(args) > 0 {
			parsed, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid down steps %q: %w", args[0], err)
			}
			if parsed <= 0 {
				return fmt.Errorf("down steps must be > 0")
			}
			steps = parsed
		}
		if err := ignoreNoChange(m.Steps(-steps)); err != nil {
			return err
		}
		log.Printf("rolled back %d migration(s)", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if len(args) == 0 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || version < 0 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		log.Printf("forced version to %d", version)
	case "goto":
		if len(args) == 0 {
			return fmt.Errorf("goto requires a target version argument")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid target version %q: %w", args[0], err)
		}
		if err := ignoreNoChange(m.Migrate(uint(target))); err != nil {
			return err
		}
		log.Printf("migrated to version %d", target)
	default:
		usage()
		os.Exit(2)
	}

	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Printf("no migration changes")
		return nil
	}
	return err
}

func migrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		strings.TrimSpace(os.Getenv("MIGRATIONS_PATH")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, MIGRATIONS_PATH, ./db/migrations, /app/db/migrations)")
}

// normalizeDBURL mirrors the API server's connection tweak so both binaries
// talk to the database the same way.
func normalizeDBURL(raw string) string {
	value := strings.TrimSpace(strings.ToLower(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")))
	switch value {
	case "1", "true", "t", "yes", "y", "on":
	default:
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force|goto> [args]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", name)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s version\n", name)
	fmt.Fprintf(os.Stderr, "  %s goto 1\n", name)
}
