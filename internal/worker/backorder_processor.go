package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// BackorderFacade exposes the subset of application functionality required by the worker.
type BackorderFacade interface {
	BackorderedOrders(ctx context.Context, limit int) ([]string, error)
	FulfillBackorders(ctx context.Context, number string) (int, error)
}

// BackorderProcessor polls completed orders waiting on stock and fills their
// backordered units concurrently.
type BackorderProcessor struct {
	facade       BackorderFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs     chan string
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewBackorderProcessor constructs the backorder worker pool.
func NewBackorderProcessor(facade BackorderFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *BackorderProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &BackorderProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan string, batchSize*workers),
		inflight:     make(map[string]struct{}),
	}
}

// Start launches background processing.
func (p *BackorderProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *BackorderProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *BackorderProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *BackorderProcessor) fetchAndDispatch(ctx context.Context) {
	numbers, err := p.facade.BackorderedOrders(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("fetch backordered orders failed", slog.String("error", err.Error()))
		}
		return
	}
	for _, number := range numbers {
		if !p.claim(number) {
			continue
		}
		select {
		case <-ctx.Done():
			p.release(number)
			return
		case p.jobs <- number:
		}
	}
}

// claim marks number as queued; an order already queued or running is skipped.
func (p *BackorderProcessor) claim(number string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inflight[number]; busy {
		return false
	}
	p.inflight[number] = struct{}{}
	return true
}

func (p *BackorderProcessor) release(number string) {
	p.mu.Lock()
	delete(p.inflight, number)
	p.mu.Unlock()
}

func (p *BackorderProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case number, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, number)
			p.release(number)
		}
	}
}

func (p *BackorderProcessor) handleOrder(ctx context.Context, number string) {
	filled, err := p.facade.FulfillBackorders(ctx, number)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			p.logger.Warn("backordered order disappeared", slog.String("order", number))
		case ctx.Err() != nil:
		default:
			p.logger.Error("fill backorders failed", slog.String("order", number), slog.String("error", err.Error()))
		}
		return
	}
	if filled > 0 {
		p.logger.Debug("backorder pass", slog.String("order", number), slog.Int("filled", filled))
	}
}
