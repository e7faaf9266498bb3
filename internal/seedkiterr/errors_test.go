package seedkiterr

import (
	"errors"
	"strings"
	"testing"
)

func TestExitCodeMapsEachErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{&LockDrift{}, 1},
		{&UniqueExhausted{}, 2},
		{&CheckUnsatisfiable{}, 2},
		{&CycleUnbreakable{}, 2},
		{&ConfigInvalid{}, 3},
		{&IntrospectionFailed{}, 1},
		{&FkOrphan{}, 1},
		{&OutputFailed{}, 1},
		{errors.New("unrelated"), 1},
	}
	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Fatalf("ExitCode(%#v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestWrappedErrorsUnwrap(t *testing.T) {
	root := errors.New("connection refused")

	intro := &IntrospectionFailed{Dialect: "postgres", Err: root}
	if !errors.Is(intro, root) {
		t.Fatalf("expected errors.Is to find the wrapped root cause through IntrospectionFailed")
	}

	cfg := &ConfigInvalid{Field: "database.url", Err: root}
	if !errors.Is(cfg, root) {
		t.Fatalf("expected errors.Is to find the wrapped root cause through ConfigInvalid")
	}

	out := &OutputFailed{Sink: "csv", Err: root}
	if !errors.Is(out, root) {
		t.Fatalf("expected errors.Is to find the wrapped root cause through OutputFailed")
	}
}

func TestErrorMessagesIncludeContext(t *testing.T) {
	err := &UniqueExhausted{Table: "users", Constraint: "users_email_key", RowIndex: 12, MaxRetries: 256}
	msg := err.Error()
	for _, want := range []string{"users", "users_email_key", "12", "256"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error message %q to mention %q", msg, want)
		}
	}
}
