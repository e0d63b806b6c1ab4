package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/resilience"
)

func TestDecodeJobTrimsAndRejectsBlank(t *testing.T) {
	shop, ok := decodeJob([]byte("  demo.myshopify.com \n"))
	if !ok || shop != "demo.myshopify.com" {
		t.Fatalf("decodeJob() = %q, %v", shop, ok)
	}
	if _, ok := decodeJob([]byte("   ")); ok {
		t.Fatalf("expected blank payload to be rejected")
	}
	if got := string(encodeJob(" demo ")); got != "demo" {
		t.Fatalf("encodeJob() = %q", got)
	}
}

func TestClassifyNATSError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		record    bool
	}{
		{name: "no servers", err: fmt.Errorf("publish: %w", nats.ErrNoServers), retryable: true, record: true},
		{name: "timeout", err: nats.ErrTimeout, retryable: true, record: true},
		{name: "reconnect buffer", err: nats.ErrReconnectBufExceeded, retryable: true, record: true},
		{name: "canceled", err: context.Canceled, retryable: false, record: false},
		{name: "max payload", err: nats.ErrMaxPayload, retryable: false, record: false},
		{name: "other", err: errors.New("bad subject"), retryable: false, record: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyNATSError(tt.err)
			if got.Retryable != tt.retryable || got.RecordFailure != tt.record {
				t.Fatalf("classifyNATSError() = %+v", got)
			}
		})
	}
}

func TestWrapTemporaryMarksConnectionLoss(t *testing.T) {
	err := resilience.WrapTemporary("nats publish", nats.ErrConnectionClosed, classifyNATSError)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	plain := errors.New("bad subject")
	if got := resilience.WrapTemporary("nats publish", plain, classifyNATSError); got != plain {
		t.Fatalf("expected non-retryable error to pass through, got %v", got)
	}
}
