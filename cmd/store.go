package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/scoutline/compete-cli/internal/runstate"
	"github.com/scoutline/compete-cli/internal/store"
)

// openStore builds the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, eris.Errorf("cmd: unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func storeRepos(st store.Store) runstate.Repos {
	return runstate.Repos{
		Runs:        st,
		Competitors: st,
		Artifacts:   st,
		Evidence:    st,
		Coverage:    st,
	}
}
