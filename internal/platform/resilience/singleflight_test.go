package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCallers(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions atomic.Int32
	var shared atomic.Int32

	const callers = 16
	gate := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-gate
			val, err, wasShared := g.Do("introspect:abc", func() (any, error) {
				executions.Add(1)
				time.Sleep(15 * time.Millisecond)
				return "principal", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if val != "principal" {
				t.Errorf("unexpected shared value %v", val)
			}
			if wasShared {
				shared.Add(1)
			}
		}()
	}

	close(gate)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected one execution, got %d", got)
	}
	if got := shared.Load(); got != callers-1 {
		t.Fatalf("expected %d shared results, got %d", callers-1, got)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions atomic.Int32

	var wg sync.WaitGroup
	for _, key := range []string{"introspect:a", "introspect:b"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err, _ := g.Do(key, func() (any, error) {
				executions.Add(1)
				return key, nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}(key)
	}
	wg.Wait()

	if got := executions.Load(); got != 2 {
		t.Fatalf("expected two executions, got %d", got)
	}
}
