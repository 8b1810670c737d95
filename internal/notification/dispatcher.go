package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal/core/events"
)

var ErrQueueFull = errors.New("notification queue full")

type worker struct {
	id         int
	workerPool chan chan Notification
	jobs       chan Notification
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan Notification, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobs:       make(chan Notification),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, deliver func(Notification)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			// announce readiness, then wait for a job or shutdown
			select {
			case w.workerPool <- w.jobs:
			case <-ctx.Done():
				return
			}

			select {
			case n := <-w.jobs:
				deliver(n)
			case <-ctx.Done():
				w.logger.Debug("notification worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher turns marketplace events into notifications and delivers them
// on a small worker pool so publishers never wait on a slow sender.
type Dispatcher struct {
	sender      Sender
	logger      *slog.Logger
	sendTimeout time.Duration

	queue      chan Notification
	workerPool chan chan Notification
	workers    int
	pending    atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(cfg Config, sender Sender, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sender == nil {
		sender = LogSender{Logger: logger}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:      sender,
		logger:      logger,
		sendTimeout: cfg.SendTimeout,
		queue:       make(chan Notification, cfg.QueueSize),
		workerPool:  make(chan chan Notification, cfg.Workers),
		workers:     cfg.Workers,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers and the dispatch loop. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.workers; i++ {
			newWorker(i, d.workerPool, d.logger).start(d.ctx, &d.wg, d.deliver)
		}
		d.wg.Add(1)
		go d.dispatch()
		d.logger.Info("notification dispatcher started", "workers", d.workers, "queue_size", cap(d.queue))
	})
}

// Subscribe registers the dispatcher for every marketplace event on bus.
func (d *Dispatcher) Subscribe(bus *events.EventBus) {
	for _, eventType := range EventTypes() {
		bus.Subscribe(eventType, d.HandleEvent)
	}
}

// HandleEvent is an events.Handler that queues the event's notifications.
func (d *Dispatcher) HandleEvent(ctx context.Context, e events.Event) error {
	for _, n := range Build(e) {
		if err := d.Enqueue(n); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) Enqueue(n Notification) error {
	d.pending.Add(1)
	select {
	case d.queue <- n:
		return nil
	default:
		d.pending.Add(-1)
		d.logger.Warn("notification queue full, dropping notification",
			"event_id", n.EventID, "department", n.Department, "queue_capacity", cap(d.queue))
		return ErrQueueFull
	}
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()
	for {
		select {
		case n := <-d.queue:
			select {
			case jobs := <-d.workerPool:
				select {
				case jobs <- n:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) deliver(n Notification) {
	defer d.pending.Add(-1)
	ctx, cancel := context.WithTimeout(d.ctx, d.sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, n); err != nil {
		d.logger.Error("failed to deliver notification",
			"event_id", n.EventID, "department", n.Department, "error", err)
	}
}

// Flush waits until every accepted notification has been handed to the
// sender, or ctx is done.
func (d *Dispatcher) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for d.pending.Load() > 0 {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown stops the workers. Notifications still queued are dropped.
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.wg.Wait()
	if n := len(d.queue); n > 0 {
		d.logger.Warn("notification dispatcher stopped with pending notifications", "pending", n)
	}
	d.logger.Info("notification dispatcher stopped")
}
