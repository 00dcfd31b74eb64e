package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLookup returns canned results per barcode and counts attempts.
type mockLookup struct {
	products map[string]service.BarcodeProduct
	errs     map[string]error
	calls    map[string]int
	mu       sync.Mutex
}

func newMockLookup() *mockLookup {
	return &mockLookup{
		products: make(map[string]service.BarcodeProduct),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (m *mockLookup) Lookup(_ context.Context, barcode string) (service.BarcodeProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[barcode]++
	if err := m.errs[barcode]; err != nil {
		return service.BarcodeProduct{}, err
	}
	return m.products[barcode], nil
}

func (m *mockLookup) callCount(barcode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[barcode]
}

// mockFiller records back-fill calls.
type mockFiller struct {
	filled map[string]string
	err    error
	mu     sync.Mutex
}

func newMockFiller() *mockFiller {
	return &mockFiller{filled: make(map[string]string)}
}

func (m *mockFiller) FillProductNameByBarcode(_ context.Context, barcode, productName string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	m.filled[barcode] = productName
	return 1, nil
}

func (m *mockFiller) filledName(barcode string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filled[barcode]
}

func testConfig() Config {
	return Config{
		QueueSize:  8,
		MaxRetries: 3,
		Backoff:    func(int) time.Duration { return time.Millisecond },
	}
}

func TestWorkerEnrichesOnSuccess(t *testing.T) {
	lookup := newMockLookup()
	lookup.products["8001234567890"] = service.BarcodeProduct{
		Found: true,
		Name:  "Latte intero",
		Brand: "Granarolo",
	}
	filler := newMockFiller()

	svc := NewWithConfig(filler, lookup, testConfig())
	defer svc.Stop()

	svc.Enqueue("8001234567890", nil, nil)

	assert.Eventually(t, func() bool {
		return filler.filledName("8001234567890") == "Latte intero"
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, lookup.callCount("8001234567890"))
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	lookup := newMockLookup()
	lookup.errs["4001"] = fmt.Errorf("lookup: %w", common.ErrLookupFailed)
	filler := newMockFiller()

	svc := NewWithConfig(filler, lookup, testConfig())
	defer svc.Stop()

	svc.Enqueue("4001", nil, nil)

	// Initial attempt plus MaxRetries requeues, then the task is dropped.
	require.Eventually(t, func() bool {
		return lookup.callCount("4001") == 4
	}, time.Second, 5*time.Millisecond)

	// No further attempts after exhaustion.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 4, lookup.callCount("4001"))
	assert.Empty(t, filler.filledName("4001"))
}

func TestWorkerDropsPermanentFailureImmediately(t *testing.T) {
	lookup := newMockLookup()
	lookup.errs["4002"] = errors.New("malformed barcode")
	filler := newMockFiller()

	svc := NewWithConfig(filler, lookup, testConfig())
	defer svc.Stop()

	svc.Enqueue("4002", nil, nil)

	require.Eventually(t, func() bool {
		return lookup.callCount("4002") == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, lookup.callCount("4002"))
}

func TestWorkerSkipsUnknownBarcode(t *testing.T) {
	lookup := newMockLookup()
	lookup.products["4003"] = service.BarcodeProduct{Found: false}
	filler := newMockFiller()

	svc := NewWithConfig(filler, lookup, testConfig())
	defer svc.Stop()

	svc.Enqueue("4003", nil, nil)

	assert.Eventually(t, func() bool {
		return lookup.callCount("4003") == 1
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, filler.filledName("4003"))
}

func TestStatusReflectsWorkerLifecycle(t *testing.T) {
	svc := NewWithConfig(newMockFiller(), newMockLookup(), testConfig())

	// Worker is lazy: nothing runs before the first enqueue.
	status := svc.Status()
	assert.False(t, status.WorkerRunning)
	assert.Zero(t, status.QueueSize)

	svc.Enqueue("4004", nil, nil)
	assert.Eventually(t, func() bool {
		return svc.Status().WorkerRunning
	}, time.Second, 5*time.Millisecond)

	svc.Stop()
	assert.Eventually(t, func() bool {
		return !svc.Status().WorkerRunning
	}, time.Second, 5*time.Millisecond)
}

func TestEnqueueNeverBlocksWhenQueueFull(t *testing.T) {
	lookup := newMockLookup()
	lookup.errs["5000"] = fmt.Errorf("slow: %w", common.ErrLookupFailed)

	cfg := testConfig()
	cfg.QueueSize = 1
	cfg.Backoff = func(int) time.Duration { return time.Minute }

	svc := NewWithConfig(newMockFiller(), lookup, cfg)
	defer svc.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			svc.Enqueue("5000", nil, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
