package repl

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"get foo", []string{"get", "foo"}, false},
		{"  put   a   b  ", []string{"put", "a", "b"}, false},
		{`put "two words" 'it''s'`, []string{"put", "two words", "its"}, false},
		{`put k "{\"a\": 1}"`, []string{"put", "k", `{"a": 1}`}, false},
		{`put k ''`, []string{"put", "k", ""}, false},
		{`put a\ b c`, []string{"put", "a b", "c"}, false},
		{`put "open`, nil, true},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, err := Split(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("Split(%q) error = %v", tt.line, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func run(t *testing.T, input string, handler Handler, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithIO(strings.NewReader(input), &out)}, opts...)
	if err := New(handler, opts...).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestREPL_DispatchesLines(t *testing.T) {
	var got [][]string
	handler := func(_ context.Context, args []string) error {
		got = append(got, args)
		if args[0] == "fail" {
			return errors.New("boom")
		}
		return nil
	}

	out := run(t, "put a 1\n\nfail\nget a\nexit\nget never\n", handler,
		WithCommands("put", "get", "fail"))

	want := [][]string{{"put", "a", "1"}, {"fail"}, {"get", "a"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("handled = %q, want %q", got, want)
	}
	if !strings.Contains(out, "Error: boom") {
		t.Errorf("output missing handler error:\n%s", out)
	}
}

func TestREPL_UnknownCommand(t *testing.T) {
	called := false
	out := run(t, "frobnicate\n", func(context.Context, []string) error {
		called = true
		return nil
	}, WithCommands("get"))

	if called {
		t.Error("handler called for unknown command")
	}
	if !strings.Contains(out, `unknown command "frobnicate"`) {
		t.Errorf("output = %q", out)
	}
}

func TestREPL_ExitAndEOF(t *testing.T) {
	for _, input := range []string{"exit\n", "quit\n", "", "get a"} {
		run(t, input, func(context.Context, []string) error { return nil })
	}
}

func TestREPL_HelpAndHistory(t *testing.T) {
	out := run(t, "get a\nhelp\nhistory\n", func(context.Context, []string) error { return nil },
		WithCommands("get", "put"), WithPrompt("> "))

	for _, want := range []string{"  get\n", "  put\n", "   1  get a\n", "> "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestREPL_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	var out bytes.Buffer
	r := New(func(context.Context, []string) error {
		called = true
		return nil
	}, WithIO(strings.NewReader("get a\n"), &out))
	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("handler ran after cancellation")
	}
}

func TestCompleter(t *testing.T) {
	c := NewCompleter("inspect snapshot", "inspect journal", "get")
	if got := c.Complete("insp"); len(got) != 2 {
		t.Errorf("Complete(insp) = %v", got)
	}
	if got := c.Complete("x"); got != nil {
		t.Errorf("Complete(x) = %v", got)
	}
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist")
	h := NewHistory(path)
	h.Add("get a")
	h.Add("get a")
	h.Add("put a 1")
	if h.Len() != 2 || h.Get(0) != "put a 1" || h.Get(5) != "" {
		t.Errorf("history = %d entries, most recent %q", h.Len(), h.Get(0))
	}
	if err := h.Save(); err != nil {
		t.Fatal(err)
	}

	h2 := NewHistory(path)
	if err := h2.Load(); err != nil {
		t.Fatal(err)
	}
	if h2.Len() != 2 || h2.Get(1) != "get a" {
		t.Errorf("reloaded history = %d entries", h2.Len())
	}

	small := NewHistory("")
	small.maxSize = 2
	for _, cmd := range []string{"a", "b", "c"} {
		small.Add(cmd)
	}
	if small.Len() != 2 || small.Get(1) != "b" {
		t.Errorf("bounded history = %d entries, oldest %q", small.Len(), small.Get(1))
	}
}
