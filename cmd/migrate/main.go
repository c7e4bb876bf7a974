package main

import (
	"context"
	"log"
	"time"

	"github.com/jmerino/hiddengems/internal/adapters/postgres"
	"github.com/jmerino/hiddengems/internal/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS gems (
	id          BIGINT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tags        TEXT[] NOT NULL DEFAULT '{}',
	price       TEXT NOT NULL DEFAULT '',
	lat         DOUBLE PRECISION NOT NULL,
	lon         DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func main() {
	cfg, err := config.Load("hiddengems-migrate")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	log.Println("gems schema is up to date")
}
