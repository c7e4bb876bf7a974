package http

import (
	"github.com/nats-io/nats.go"

	"github.com/jmerino/hiddengems/internal/adapters/postgres"
	"github.com/jmerino/hiddengems/internal/adapters/valkey"
	"github.com/jmerino/hiddengems/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Gems    *usecases.GemService
	Queries *usecases.QueryService
	NATS    *nats.Conn
	DB      *postgres.DB
	Cache   *valkey.Cache
}
