package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnterminatedQuote is returned for a line with an open quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Handler executes one command line split into arguments.
type Handler func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	handler   Handler
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams (default stdin and stdout).
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// WithCommands sets the words offered by completion and help.
func WithCommands(commands ...string) Option {
	return func(r *REPL) {
		r.completer = NewCompleter(commands...)
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a REPL that passes each line to handler.
func New(handler Handler, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    "jmap> ",
		handler:   handler,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until EOF, "exit", "quit" or ctx is done. Command errors
// are printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history not loaded: %v\n", err)
	}
	defer r.history.Save()

	done := make(chan struct{})
	defer close(done)
	lines := r.readLines(done)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt)

		var (
			in input
			ok bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		case in, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(r.output)
			return nil
		}
		if in.err != nil {
			return in.err
		}

		line := strings.TrimSpace(in.line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		switch line {
		case "exit", "quit":
			return nil
		case "help":
			r.help()
			continue
		case "history":
			for i := r.history.Len() - 1; i >= 0; i-- {
				fmt.Fprintf(r.output, "%4d  %s\n", r.history.Len()-i, r.history.Get(i))
			}
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

type input struct {
	line string
	err  error
}

// readLines feeds input lines to the returned channel, which is closed at
// EOF. A read error other than EOF is delivered once. A read blocked on the
// terminal outlives Run; it ends with the process.
func (r *REPL) readLines(done <-chan struct{}) <-chan input {
	lines := make(chan input)
	reader := bufio.NewReader(r.input)
	send := func(in input) bool {
		select {
		case lines <- in:
			return true
		case <-done:
			return false
		}
	}

	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadString('\n')
			if line != "" && !send(input{line: line}) {
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					send(input{err: err})
				}
				return
			}
		}
	}()
	return lines
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	if len(r.completer.Complete(args[0])) == 0 && len(r.completer.commands) > 0 {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return r.handler(ctx, args)
}

func (r *REPL) help() {
	fmt.Fprintln(r.output, "Commands:")
	for _, cmd := range r.completer.commands {
		fmt.Fprintf(r.output, "  %s\n", cmd)
	}
	fmt.Fprintln(r.output, "  history")
	fmt.Fprintln(r.output, "  help")
	fmt.Fprintln(r.output, "  exit")
}

// Split breaks a line into arguments on whitespace. Single and double quotes
// group words; a backslash escapes the next character outside single quotes.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
