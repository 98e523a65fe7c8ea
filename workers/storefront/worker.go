package storefront

import (
	"context"
	"sync"
	"time"

	"courier-bridge-service/workers/storefront/woocommerce"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the last complete read of the store.
type Snapshot struct {
	Products    []woocommerce.Product `json:"products"`
	Orders      []woocommerce.Order   `json:"orders"`
	RefreshedAt time.Time             `json:"refreshedAt"`
}

// Worker keeps an in-memory copy of the store's products and orders. A
// failed refresh keeps the previous snapshot.
type Worker struct {
	logger   *zap.Logger
	client   *woocommerce.Client
	schedule string
	now      func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
	busy     bool
}

func NewWorker(logger *zap.Logger, client *woocommerce.Client, schedule string) *Worker {
	if schedule == "" {
		schedule = "@every 5m"
	}
	return &Worker{
		logger:   logger.Named("storefront"),
		client:   client,
		schedule: schedule,
		now:      time.Now,
	}
}

func (w *Worker) Name() string {
	return "storefront"
}

func (w *Worker) Schedule() string {
	return w.schedule
}

func (w *Worker) Ready(time.Time) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return !w.busy
}

func (w *Worker) Execute(ctx context.Context) {
	_ = w.Refresh(ctx)
}

// Refresh reads all products and orders and replaces the snapshot.
func (w *Worker) Refresh(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return nil
	}
	w.busy = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	log := w.logger.With(zap.String("sync_id", uuid.NewString()))
	log.Info("Refreshing storefront data")

	var (
		products []woocommerce.Product
		orders   []woocommerce.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = w.client.GetAllProducts(gctx, func(n int) {
			log.Debug("Products loaded", zap.Int("count", n))
		})
		return err
	})
	g.Go(func() (err error) {
		orders, err = w.client.GetAllOrders(gctx, func(n int) {
			log.Debug("Orders loaded", zap.Int("count", n))
		})
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("Storefront refresh failed, keeping previous data", zap.Error(err))
		return err
	}

	w.mu.Lock()
	w.snapshot = Snapshot{Products: products, Orders: orders, RefreshedAt: w.now()}
	w.mu.Unlock()

	log.Info("Storefront data refreshed",
		zap.Int("products", len(products)),
		zap.Int("orders", len(orders)),
	)
	return nil
}

func (w *Worker) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

// ProcessingOrders returns the orders waiting to be shipped.
func (w *Worker) ProcessingOrders() []woocommerce.Order {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var ret []woocommerce.Order
	for _, o := range w.snapshot.Orders {
		if o.Status == woocommerce.OrderStatusProcessing {
			ret = append(ret, o)
		}
	}
	return ret
}

// Orders resolves ids from the snapshot, asking the store for any it does
// not hold.
func (w *Worker) Orders(ctx context.Context, ids []int64) ([]woocommerce.Order, error) {
	w.mu.RLock()
	byID := make(map[int64]woocommerce.Order, len(w.snapshot.Orders))
	for _, o := range w.snapshot.Orders {
		byID[o.ID] = o
	}
	w.mu.RUnlock()

	orders := make([]woocommerce.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			orders = append(orders, o)
			continue
		}
		o, err := w.client.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}
