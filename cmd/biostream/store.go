package main

import (
	"context"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/config"
	"github.com/bigyambat/BioStream/postgres"
	"github.com/bigyambat/BioStream/sqlite"
)

// openStore connects the configured backend. The returned close func is
// never nil. A nil store means persistence is disabled.
func openStore(ctx context.Context, cfg *config.Config) (biostream.Store, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		s, err := postgres.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, func() {}, err
		}
		return s, s.Close, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}
