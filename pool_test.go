package invoicedoc

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func fakeFactory(created *atomic.Int32) exporterFactory {
	return func() (*PDFExporter, error) {
		created.Add(1)
		return newTestExporter(&mockRenderer{result: []byte("%PDF")}), nil
	}
}

func TestExporterPool_CreatesLazily(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := newExporterPool(2, fakeFactory(&created))
	defer pool.Close()

	if created.Load() != 0 {
		t.Fatalf("created %d exporters before first acquire", created.Load())
	}

	e, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pool.Release(e)

	e2, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if e2 != e {
		t.Error("Acquire() did not reuse the released exporter")
	}
	if created.Load() != 1 {
		t.Errorf("created %d exporters, want 1", created.Load())
	}
}

func TestExporterPool_BlocksAtCapacity(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := newExporterPool(1, fakeFactory(&created))
	defer pool.Close()

	if _, err := pool.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() at capacity error = %v, want DeadlineExceeded", err)
	}
}

func TestExporterPool_FactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("no browser")
	calls := 0
	pool := newExporterPool(1, func() (*PDFExporter, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return newTestExporter(&mockRenderer{}), nil
	})
	defer pool.Close()

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Acquire() error = %v, want factory error", err)
	}
	if _, err := pool.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() after factory failure error = %v, want slot freed", err)
	}
}

func TestExporterPool_Close(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := newExporterPool(2, fakeFactory(&created))

	e, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	mock := e.renderer.(*mockRenderer)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.closed {
		t.Error("Close() did not close acquired exporter")
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	pool.Release(e)
	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestExporterPool_ConcurrentExport(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := newExporterPool(2, fakeFactory(&created))
	defer pool.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Export(context.Background(), "t", "<p>x</p>"); err != nil {
				t.Errorf("Export() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := created.Load(); n > 2 {
		t.Errorf("created %d exporters, want at most 2", n)
	}
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(3); got != 3 {
		t.Errorf("ResolvePoolSize(3) = %d, want 3", got)
	}

	want := runtime.GOMAXPROCS(0) / cpuDivisor
	want = max(MinPoolSize, min(MaxPoolSize, want))
	if got := ResolvePoolSize(0); got != want {
		t.Errorf("ResolvePoolSize(0) = %d, want %d", got, want)
	}
	if got := ResolvePoolSize(-1); got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(-1) = %d, out of range", got)
	}
}

func TestNewExporterPool_MinimumSize(t *testing.T) {
	t.Parallel()

	pool := NewExporterPool(0, time.Second)
	defer pool.Close()
	if pool.Size() != 1 {
		t.Errorf("Size() = %d, want 1", pool.Size())
	}
}
