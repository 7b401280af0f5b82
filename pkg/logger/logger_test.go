package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewWritesJSONWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), "u1")
	WithRequestID(ctx, log).Debug("task completed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["msg"] != "task completed" || entry["request_id"] != "req-1" || entry["user_id"] != "u1" {
		t.Fatalf("entry = %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", entry)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestWithRequestIDWithoutFields(t *testing.T) {
	log, _ := New(Config{Output: &bytes.Buffer{}})
	if got := WithRequestID(context.Background(), log); got != log {
		t.Fatal("logger should be returned unchanged")
	}
}
