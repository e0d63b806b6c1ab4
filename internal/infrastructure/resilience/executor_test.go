package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

func fastRetries(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
	}
}

func TestExecuteRetryPolicy(t *testing.T) {
	errBusy := errors.New("catalog busy")
	errBadQuery := errors.New("bad query")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{name: "recovers before limit", failures: 2, err: errBusy, wantCalls: 3},
		{name: "gives up at limit", failures: 5, err: errBusy, wantCalls: 3, wantErr: errBusy},
		{name: "permanent is not retried", failures: 5, err: errBadQuery, wantCalls: 1, wantErr: errBadQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewExecutor(fastRetries(3), nil)
			calls := 0
			err := exec.Execute(context.Background(), "shopify.products", func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, func(err error) ErrorClassification {
				return ErrorClassification{Retryable: errors.Is(err, errBusy), RecordFailure: true}
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestExecuteStopsRetryingWhenContextEnds(t *testing.T) {
	cfg := fastRetries(5)
	cfg.RetryInitialBackoff = time.Second
	cfg.RetryMaxBackoff = time.Second
	exec := NewExecutor(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	errBusy := errors.New("busy")
	calls := 0
	err := exec.Execute(ctx, "ollama.chat", func(context.Context) error {
		calls++
		return errBusy
	}, func(error) ErrorClassification { return ErrorClassification{Retryable: true} })
	if !errors.Is(err, errBusy) || calls != 1 {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	cfg := fastRetries(1)
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = 50 * time.Millisecond
	cfg.BreakerHalfOpenMaxCalls = 1
	exec := NewExecutor(cfg, nil)

	errDown := errors.New("ai down")
	record := func(error) ErrorClassification { return ErrorClassification{RecordFailure: true} }

	for i := 0; i < 2; i++ {
		if err := exec.Execute(context.Background(), "openai.chat", func(context.Context) error {
			return errDown
		}, record); !errors.Is(err, errDown) {
			t.Fatalf("call %d: err = %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "openai.chat", func(context.Context) error {
		t.Fatal("open breaker must short-circuit")
		return nil
	}, record)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("want open-state error, got %v", err)
	}

	// Breakers are per operation.
	if err := exec.Execute(context.Background(), "shopify.products", func(context.Context) error { return nil }, record); err != nil {
		t.Fatalf("unrelated operation affected: %v", err)
	}
}

func TestNilExecutorRunsDirectly(t *testing.T) {
	var exec *Executor
	calls := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	}, nil)
	if err != nil || calls != 1 {
		t.Fatalf("expected one direct call, got calls=%d err=%v", calls, err)
	}
}

func TestCallReturnsValue(t *testing.T) {
	exec := NewExecutor(Config{RetryMaxAttempts: 2, RetryInitialBackoff: time.Millisecond, BreakerEnabled: false}, nil)
	attempts := 0
	got, err := Call(context.Background(), exec, "op", func(context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", &HTTPStatusError{Service: "svc", Operation: "op", StatusCode: 503, Status: "503 Service Unavailable"}
		}
		return "ok", nil
	}, ClassifyHTTPError)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got != "ok" || attempts != 2 {
		t.Fatalf("expected ok after retry, got %q attempts=%d", got, attempts)
	}
}

func TestStateObserverSeesOpen(t *testing.T) {
	var transitions []gobreaker.State
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      1,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	}, nil).WithStateObserver(func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	})

	_ = exec.Execute(context.Background(), "op", func(context.Context) error {
		return errors.New("boom")
	}, nil)
	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Fatalf("expected open transition, got %v", transitions)
	}
}

func TestClassifyHTTPError(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{name: "cancelled", err: context.Canceled},
		{name: "429", err: &HTTPStatusError{StatusCode: 429}, retryable: true, recordFailure: true},
		{name: "502", err: &HTTPStatusError{StatusCode: 502}, retryable: true, recordFailure: true},
		{name: "401", err: &HTTPStatusError{StatusCode: 401}},
		{name: "open breaker", err: gobreaker.ErrOpenState, retryable: true, recordFailure: true},
		{name: "other", err: errors.New("decode"), recordFailure: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyHTTPError(tc.err)
			if got.Retryable != tc.retryable || got.RecordFailure != tc.recordFailure {
				t.Fatalf("unexpected classification %+v", got)
			}
		})
	}
}

func TestWrapTemporary(t *testing.T) {
	err := WrapTemporary("call", &HTTPStatusError{StatusCode: 503}, ClassifyHTTPError)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}
	permanent := errors.New("bad request")
	if got := WrapTemporary("call", permanent, ClassifyHTTPError); got != permanent {
		t.Fatalf("expected permanent error unchanged, got %v", got)
	}
}

func TestBreakerOnlyMakesSingleAttempt(t *testing.T) {
	cfg := DefaultConfig().BreakerOnly()
	cfg.RetryInitialBackoff = time.Millisecond
	exec := NewExecutor(cfg, nil)

	attempts := 0
	errTemp := errors.New("upstream 503")
	err := exec.Execute(context.Background(), "ai.chat", func(context.Context) error {
		attempts++
		return errTemp
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly one attempt, got %d", attempts)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	got := Config{RetryInitialBackoff: time.Second, RetryMaxBackoff: time.Millisecond}.normalize()
	def := DefaultConfig()
	if got.RetryMaxAttempts != def.RetryMaxAttempts || got.BreakerMinRequests != def.BreakerMinRequests {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if got.RetryMaxBackoff != time.Second {
		t.Fatalf("expected max backoff raised to initial backoff, got %v", got.RetryMaxBackoff)
	}
}
