package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/tasks/internal/config"
)

func main() {
	cfg := config.Load()

	var direction, dsn string
	var steps int
	flag.StringVar(&dsn, "dsn", cfg.Database.DSN(), "Postgres connection string")
	flag.StringVar(&direction, "direction", "up", "up, down or version")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply; 0 applies all")
	flag.Parse()

	db, err := postgres.Open(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}

	m, err := postgres.NewMigrator(db)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatal(verr)
		}
		log.Printf("version=%d dirty=%t", version, dirty)
		return
	default:
		log.Fatalf("unknown direction %q", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("Migrations applied successfully.")
}
