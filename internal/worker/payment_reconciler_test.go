package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/test"
	"github.com/vfaivre/thumbdesk/internal/worker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestReconcilerProcessesBatches(t *testing.T) {
	facade := &test.WorkerFacadeStub{
		Batches: [][]model.Payment{
			{{ID: 1, ProviderOrderID: "PP-1"}, {ID: 2, ProviderOrderID: "PP-2"}},
			{{ID: 3, ProviderOrderID: "PP-3"}},
		},
	}

	reconciler := worker.NewPaymentReconciler(facade, 5*time.Millisecond, time.Minute, 4, 2, testLogger())
	reconciler.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		facade.Lock()
		done := len(facade.Reconciled) >= 3
		facade.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for reconciliation")
		case <-time.After(5 * time.Millisecond):
		}
	}
	reconciler.Stop()

	facade.Lock()
	defer facade.Unlock()
	seen := make(map[string]bool)
	for _, call := range facade.Reconciled {
		seen[call.ProviderOrderID] = true
	}
	for _, want := range []string{"PP-1", "PP-2", "PP-3"} {
		if !seen[want] {
			t.Fatalf("payment %s never reconciled, got %+v", want, facade.Reconciled)
		}
	}
}

func TestReconcilerSurvivesErrors(t *testing.T) {
	var calls int32
	facade := &test.WorkerFacadeStub{
		Batches: [][]model.Payment{
			{{ID: 1, ProviderOrderID: "PP-1"}, {ID: 2, ProviderOrderID: "PP-2"}},
		},
		ReconcileFn: func(ctx context.Context, payment model.Payment) (int, error) {
			atomic.AddInt32(&calls, 1)
			if payment.ProviderOrderID == "PP-1" {
				return 0, domainErrors.ErrAmountMismatch
			}
			return 0, errors.New("provider down")
		},
	}

	reconciler := worker.NewPaymentReconciler(facade, 5*time.Millisecond, time.Minute, 4, 1, testLogger())
	reconciler.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&calls) < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for reconciliation")
		case <-time.After(5 * time.Millisecond):
		}
	}
	reconciler.Stop()
}

func TestReconcilerStopsCleanly(t *testing.T) {
	facade := &test.WorkerFacadeStub{}
	reconciler := worker.NewPaymentReconciler(facade, time.Millisecond, time.Minute, 2, 2, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	reconciler.Start(ctx)
	time.Sleep(10 * time.Millisecond)
	cancel()
	reconciler.Stop()

	// a second Stop is a no-op
	reconciler.Stop()
}

func TestReconcilerPollError(t *testing.T) {
	polled := make(chan struct{}, 1)
	facade := &test.WorkerFacadeStub{
		PendingFn: func(ctx context.Context, olderThan time.Duration, limit int) ([]model.Payment, error) {
			select {
			case polled <- struct{}{}:
			default:
			}
			return nil, errors.New("db down")
		},
	}

	reconciler := worker.NewPaymentReconciler(facade, time.Millisecond, time.Minute, 2, 1, testLogger())
	reconciler.Start(context.Background())
	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("poll never happened")
	}
	reconciler.Stop()
}
