package bootstrap

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkhomenko/spendbot/internal/config"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Pool      *pgxpool.Pool
	Firestore *firestore.Client
}

// Run wires the process-wide resources. Only the configured store
// backend is connected; the other client stays nil.
func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewJSONHandler)

	switch cfg.StoreBackend {
	case config.BackendFirestore:
		bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
	default:
		bs.Pool, err = InitPostgres(applicationCtx, cfg.DatabaseURL)
		if err != nil {
			return bs, err
		}
	}

	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.Pool != nil {
		bs.Pool.Close()
	}
	if bs.Firestore != nil {
		bs.Firestore.Close()
	}
}
