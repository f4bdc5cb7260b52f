package observability

import (
	"errors"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog("http request", []any{"method", "GET", "path", "/healthz"}) {
		t.Fatalf("expected health check access log to be skipped")
	}
	if !shouldSkipUptraceLog("http request", []any{"path", "/readyz"}) {
		t.Fatalf("expected readiness probe access log to be skipped")
	}
	if shouldSkipUptraceLog("http request", []any{"path", "/v1/groups"}) {
		t.Fatalf("did not expect API access log to be skipped")
	}
	if shouldSkipUptraceLog("ranking invalidation ran inline", []any{"path", "/healthz"}) {
		t.Fatalf("did not expect non-access-log event to be skipped")
	}
}

func TestLogAttributes(t *testing.T) {
	attrs := logAttributes([]any{"group_id", "weekend-office-pool", "attempt", 2, "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "group_id" || attrs[0].Value.AsString() != "weekend-office-pool" {
		t.Fatalf("unexpected group_id attribute")
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestLogValue_Scalars(t *testing.T) {
	if got := logValue(errors.New("kickoff passed"), 0); got.AsString() != "kickoff passed" {
		t.Fatalf("unexpected error value %q", got.AsString())
	}
	if got := logValue(90*time.Minute, 0); got.AsString() != "1h30m0s" {
		t.Fatalf("unexpected duration value %q", got.AsString())
	}
}

func TestLogValue_Map(t *testing.T) {
	v := logValue(map[string]any{
		"points":   17,
		"predicts": true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}
