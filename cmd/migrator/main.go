// migrator applies the schema migrations under db/migrations.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/securitycam/central/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	source := flag.String("source", "file://db/migrations", "migration source URL")
	upCmd := flag.Bool("up", false, "apply all up migrations")
	downCmd := flag.Bool("down", false, "roll back all migrations")
	stepsCmd := flag.Int("steps", 0, "apply +/- N migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(2)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("migrate driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(*source, cfg.Database.Name, driver)
	if err != nil {
		log.Fatalf("migrate init: %v", err)
	}

	switch {
	case *upCmd:
		err = m.Up()
	case *downCmd:
		err = m.Down()
	case *stepsCmd != 0:
		err = m.Steps(*stepsCmd)
	default:
		log.Fatal("specify one of -up, -down or -steps N")
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no change")
		return
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("done")
}
