package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Dominic0607/Order-System-sub000/internal/config"
	"github.com/Dominic0607/Order-System-sub000/internal/queue"
	"github.com/Dominic0607/Order-System-sub000/internal/report"
	"github.com/Dominic0607/Order-System-sub000/internal/storage"
)

// OrderSource is the narrow slice of the sheet client the handlers need.
type OrderSource interface {
	UpdateOrder(ctx context.Context, id string, fields map[string]any) error
	FetchEntities(ctx context.Context, kind string) ([]report.SeedEntity, error)
}

// SnapshotProvider serves the current raw-order snapshot.
type SnapshotProvider interface {
	Orders(ctx context.Context, force bool) ([]report.RawOrder, error)
}

type Handler struct {
	Snapshot SnapshotProvider
	Source   OrderSource
	Logger   *zap.Logger
	Config   config.Config
	Events   *queue.Publisher
	Archive  *storage.ObjectStore

	// Now is the report clock; tests pin it, production leaves it nil.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().In(h.Config.ReportLocation())
	}
	return time.Now().In(h.Config.ReportLocation())
}

func zapError(err error) zap.Field {
	return zap.Error(err)
}
