package flashsale

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	niche "github.com/Unrealaaaaaa/Niche-review"
	"github.com/Unrealaaaaaa/Niche-review/lock"
	"github.com/Unrealaaaaaa/Niche-review/seq"
	"github.com/Unrealaaaaaa/Niche-review/store"
)

// Order is an admitted purchase intent. It is queued at admission time and
// superseded by a durable row once the worker persists it; a dropped intent
// is terminal and observable only in logs.
type Order struct {
	ID        uint64
	UserID    uint64
	VoucherID uint64
	CreatedAt time.Time
}

// OrderStore is the durable persistence collaborator. CreateOrder must run
// as ONE transaction: re-check one-order-per-user-per-voucher, decrement
// durable stock guarded by stock > 0, insert the order row. It returns
// ErrDuplicateOrder or ErrOutOfStock when a guard fails, so a failed
// decrement never leaves an orphaned order behind.
type OrderStore interface {
	CreateOrder(ctx context.Context, o Order) error
}

// Options configure a Pipeline. Admitter, Orders, IDs and Store are
// required.
type Options struct {
	Admitter Admitter
	Orders   OrderStore
	IDs      *seq.Generator
	Store    store.Store // backs the per-user persistence locks

	Logger    niche.Logger  // nil => NopLogger
	QueueSize int           // pending intents; 0 => 4096
	LockTTL   time.Duration // per-user lock lease; 0 => 10s
}

// Pipeline is the flash-sale order-admission pipeline: synchronous atomic
// admission, then queued asynchronous persistence through a single owned
// sequential worker. One worker, deliberately: durable writes stay FIFO in
// enqueue order and the database sees exactly one writer during a spike.
type Pipeline struct {
	admit   Admitter
	orders  OrderStore
	ids     *seq.Generator
	store   store.Store
	log     niche.Logger
	lockTTL time.Duration

	queue     chan Order
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New(opts Options) (*Pipeline, error) {
	if opts.Admitter == nil || opts.Orders == nil || opts.IDs == nil || opts.Store == nil {
		return nil, fmt.Errorf("flashsale: admitter, orders, ids and store are required")
	}
	p := &Pipeline{
		admit:   opts.Admitter,
		orders:  opts.Orders,
		ids:     opts.IDs,
		store:   opts.Store,
		log:     opts.Logger,
		lockTTL: opts.LockTTL,
	}
	if p.log == nil {
		p.log = niche.NopLogger{}
	}
	if p.lockTTL == 0 {
		p.lockTTL = 10 * time.Second
	}
	size := opts.QueueSize
	if size == 0 {
		size = 4096
	}
	p.queue = make(chan Order, size)

	p.wg.Add(1)
	go p.worker()
	return p, nil
}

// Purchase admits one purchase request. On admission it mints the order id,
// queues the intent and returns immediately - the durable row is written
// later by the worker. Business rejections surface as ErrOutOfStock or
// ErrDuplicateOrder.
//
// If the queue is full the send blocks: stock is already decremented at this
// point, so dropping the intent would strand inventory. Must not be called
// after Close.
func (p *Pipeline) Purchase(ctx context.Context, userID, voucherID uint64) (uint64, error) {
	verdict, err := p.admit.Admit(ctx, voucherID, userID)
	if err != nil {
		return 0, err
	}
	switch verdict {
	case OutOfStock:
		return 0, ErrOutOfStock
	case Duplicate:
		return 0, ErrDuplicateOrder
	}

	id, err := p.ids.Next(ctx, "order")
	if err != nil {
		return 0, err
	}
	o := Order{
		ID:        id,
		UserID:    userID,
		VoucherID: voucherID,
		CreatedAt: time.Now().UTC(),
	}
	select {
	case p.queue <- o:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return id, nil
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for o := range p.queue {
		p.persist(o)
	}
}

// persist writes one intent durably under the per-user lock. The lock
// defends against the cache-side marker and the durable uniqueness check
// diverging. Every failure here is terminal for the intent and logged with
// enough detail to reconcile by hand - one bad intent must never stop the
// loop.
func (p *Pipeline) persist(o Order) {
	ctx := context.Background()
	l := lock.New(p.store, "order:user:"+strconv.FormatUint(o.UserID, 10))
	ok, err := l.TryLock(ctx, p.lockTTL)
	if err != nil || !ok {
		p.log.Error("order intent dropped: user lock unavailable", niche.Fields{
			"order": o.ID, "user": o.UserID, "voucher": o.VoucherID, "err": err,
		})
		return
	}
	defer func() { _ = l.Unlock(ctx) }()

	if err := p.orders.CreateOrder(ctx, o); err != nil {
		p.log.Error("order persistence failed", niche.Fields{
			"order": o.ID, "user": o.UserID, "voucher": o.VoucherID, "err": err,
		})
	}
}

// Close stops accepting intents and waits for the worker to drain the
// queue. Callers must stop invoking Purchase first.
func (p *Pipeline) Close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.queue) })
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
