package invoicedoc

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one exporter is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed indicates Acquire was called on a closed pool.
var ErrPoolClosed = errors.New("exporter pool closed")

// exporterFactory builds one pooled exporter.
type exporterFactory func() (*PDFExporter, error)

// ExporterPool bounds the number of concurrent headless browsers.
// Exporters are created lazily on first acquire to avoid startup delay.
type ExporterPool struct {
	size      int
	newFn     exporterFactory
	exporters []*PDFExporter
	idle      chan *PDFExporter
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewExporterPool creates a pool with capacity for n exporters.
func NewExporterPool(n int, timeout time.Duration) *ExporterPool {
	return newExporterPool(n, func() (*PDFExporter, error) {
		return NewPDFExporter(timeout)
	})
}

func newExporterPool(n int, newFn exporterFactory) *ExporterPool {
	if n < 1 {
		n = 1
	}
	return &ExporterPool{
		size:      n,
		newFn:     newFn,
		exporters: make([]*PDFExporter, 0, n),
		idle:      make(chan *PDFExporter, n),
	}
}

// Acquire gets an exporter, creating one if capacity allows.
// Blocks until one is released or ctx is done.
func (p *ExporterPool) Acquire(ctx context.Context) (*PDFExporter, error) {
	select {
	case e, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return e, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		e, err := p.newFn()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.exporters = append(p.exporters, e)
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case e, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return e, nil
	}
}

// Release returns an exporter to the pool.
// The lock is held while sending so Close cannot close the channel mid-send;
// the channel has room for every exporter, so the send never blocks.
func (p *ExporterPool) Release(e *PDFExporter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.idle <- e
}

// Export acquires an exporter, exports, and releases it.
func (p *ExporterPool) Export(ctx context.Context, title, previewHTML string) ([]byte, error) {
	e, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(e)
	return e.Export(ctx, title, previewHTML)
}

// Close releases all browser resources.
// Returns an aggregated error if multiple exporters fail to close.
func (p *ExporterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	exporters := p.exporters
	p.mu.Unlock()

	var errs []error
	for _, e := range exporters {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ExporterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is container-aware once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
