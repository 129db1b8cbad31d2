package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		key   string
		val   string
	}{
		{"DEBUG", "dbg", "a", "1"},
		{"INFO", "inf", "b", "2"},
		{"WARN", "wrn", "c", "3"},
		{"ERROR", "err", "d", "4"},
	}

	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Fatalf("expected line with level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, "msg="+tc.msg) {
			t.Fatalf("expected line with msg=%q in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.key+"="+tc.val) {
			t.Fatalf("expected attribute %s=%s in output:\n%s", tc.key, tc.val, out)
		}
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("request_id", "123", "user", "alice").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=hello", "request_id=123", "user=alice", "k=v"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop().With("a", 1)
	l.Debug(context.TODO(), "x")
	l.Info(context.TODO(), "x")
	l.Warn(context.TODO(), "x")
	l.Error(context.TODO(), "x")
}

func TestSlogLogger_RedactsCredentials(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("Authorization", "Bearer abc").Info(context.Background(), "login", "username", "alice", "password", "hunter2", "token", "t0k")

	out := buf.String()
	for _, secret := range []string{"Bearer abc", "hunter2", "t0k"} {
		if strings.Contains(out, secret) {
			t.Fatalf("secret %q leaked into output:\n%s", secret, out)
		}
	}
	if !strings.Contains(out, "username=alice") || !strings.Contains(out, "password="+Redacted) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRedact_LeavesArgsUntouched(t *testing.T) {
	args := []any{"password", "p", "id", 1}
	got := redact(args)

	if args[1] != "p" {
		t.Fatalf("input mutated: %v", args)
	}
	if got[1] != Redacted || got[3] != 1 {
		t.Fatalf("unexpected result: %v", got)
	}

	plain := []any{"id", 1, "odd"}
	if out := redact(plain); &out[0] != &plain[0] {
		t.Fatal("expected the same slice when nothing is masked")
	}
}
