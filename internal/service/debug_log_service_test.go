package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogWritesRecord(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewDebugLogService(zap.New(core))

	err := svc.Write(`{"location":"essay.js:42","message":"scroll","data":{"y":120},"hypothesisId":"H1"}`)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log line, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Message != "scroll" {
		t.Fatalf("expected message scroll, got %q", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["location"] != "essay.js:42" || fields["hypothesisId"] != "H1" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields["message"]; ok {
		t.Fatalf("message should not be duplicated as a field")
	}
}

func TestDebugLogRejectsInvalidPayloads(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewDebugLogService(zap.New(core))

	for _, raw := range []string{
		"",
		"not json",
		`["location","message"]`,
		`{"location":"a.js"}`,
		`{"message":"only"}`,
		`{"location":null,"message":"x"}`,
	} {
		if err := svc.Write(raw); !errors.Is(err, ErrDebugLogInvalid) {
			t.Fatalf("payload %q: expected ErrDebugLogInvalid, got %v", raw, err)
		}
	}
	if logs.Len() != 0 {
		t.Fatalf("invalid payloads should not be logged")
	}
}

func TestDebugLogStringifiesNonStringMessage(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewDebugLogService(zap.New(core))

	if err := svc.Write(`{"location":"x","message":{"a":1}}`); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := logs.All()[0].Message; got != `{"a":1}` {
		t.Fatalf("expected JSON message, got %q", got)
	}
}
