package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/event"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/hotstore"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/warehouse"
)

// WarehouseSink is the cold-path collaborator: append-only historical rows.
type WarehouseSink interface {
	Append(ctx context.Context, row warehouse.HistoricalRow) error
}

// HotSink is the hot-path collaborator: keyed row mutations.
type HotSink interface {
	Apply(ctx context.Context, m hotstore.RowMutation) error
}

// Router fans one decoded event out to both sinks. The two branches are
// independent best-effort writes with no cross-branch transaction: under
// partial failure an event may land in one store and not the other, and the
// stores are allowed to diverge until redelivery catches up.
//
// The router is stateless and safe for concurrent Dispatch calls; the sink
// handles it borrows are owned by the hosting process.
type Router struct {
	warehouse WarehouseSink
	hot       HotSink
	logger    *zap.Logger
}

// NewRouter creates a router borrowing the given sink handles.
func NewRouter(warehouseSink WarehouseSink, hotSink HotSink, logger *zap.Logger) *Router {
	return &Router{
		warehouse: warehouseSink,
		hot:       hotSink,
		logger:    logger,
	}
}

// Dispatch decodes a raw payload and runs both branches concurrently.
//
// A malformed payload or a formatting failure is logged and dropped (nil
// return: the message is consumed). A sink write failure is returned so the
// transport can redeliver; there is no retry loop here.
func (r *Router) Dispatch(ctx context.Context, raw []byte) error {
	e, err := event.Decode(raw)
	if err != nil {
		r.logger.Warn("Dropping malformed event payload",
			zap.Int("payload_bytes", len(raw)),
			zap.Error(err),
		)
		return nil
	}

	var (
		wg      sync.WaitGroup
		coldErr error
		hotErr  error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		row := FormatCold(e)
		if err := r.warehouse.Append(ctx, row); err != nil {
			r.logger.Error("Warehouse append failed",
				zap.String("event_id", e.EventID),
				zap.String("user_id", e.UserID),
				zap.Error(err),
			)
			coldErr = err
		}
	}()

	go func() {
		defer wg.Done()
		m, err := FormatHot(e)
		if err != nil {
			// Format errors drop only this branch; the cold row still lands.
			r.logger.Warn("Dropping hot-path branch",
				zap.String("event_id", e.EventID),
				zap.Error(err),
			)
			return
		}
		if err := r.hot.Apply(ctx, m); err != nil {
			r.logger.Error("Hot store write failed",
				zap.String("event_id", e.EventID),
				zap.String("row_key", string(m.Key)),
				zap.Error(err),
			)
			hotErr = err
		}
	}()

	wg.Wait()

	return errors.Join(coldErr, hotErr)
}
