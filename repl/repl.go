// Package repl implements a line-edited interactive shell over an
// engine.Engine: it reads policy text or `?= goal;` lines, drives each
// query to completion, and prints Result bindings as a table.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/rulekit/rulekit/engine"
	"github.com/rulekit/rulekit/external"
	"github.com/rulekit/rulekit/presentation"
	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/term"
	"github.com/rulekit/rulekit/vm"
)

const (
	initPrompt = "> "
	bufPrompt  = ". "
)

// REPL is one interactive session against a single engine.Engine.
type REPL struct {
	out      io.Writer
	line     *liner.State
	eng      *engine.Engine
	reg      *external.Registry
	buffer   []string
	filename string
}

// New returns a REPL writing output to out, evaluating against eng, and
// answering any external lookups via reg (an empty registry if the
// loaded policy never constructs host instances).
func New(out io.Writer, eng *engine.Engine, reg *external.Registry) *REPL {
	return &REPL{out: out, eng: eng, reg: reg, filename: "<repl>"}
}

// Loop reads lines from stdin until the user types `:quit` or EOF,
// evaluating each statement as it completes. It returns nil on a clean
// exit.
func (r *REPL) Loop(ctx context.Context) error {
	r.line = liner.NewLiner()
	defer r.line.Close()
	r.line.SetCtrlCAborts(true)

	for {
		prompt := initPrompt
		if len(r.buffer) > 0 {
			prompt = bufPrompt
		}
		text, err := r.line.Prompt(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		r.line.AppendHistory(text)

		if len(r.buffer) == 0 {
			if done, err := r.oneShotCommand(ctx, text); done {
				if err == errQuit {
					return nil
				}
				if err != nil {
					fmt.Fprintln(r.out, err)
				}
				continue
			}
		}

		r.buffer = append(r.buffer, text)
		if !strings.HasSuffix(strings.TrimSpace(text), ";") {
			continue
		}
		stmt := strings.Join(r.buffer, "\n")
		r.buffer = nil
		if err := r.eval(ctx, stmt); err != nil {
			fmt.Fprintln(r.out, err)
		}
	}
}

// oneShotCommand handles a `:`-prefixed command that never participates
// in the statement buffer. It reports done=false for anything else, so
// the caller falls through to ordinary buffering.
func (r *REPL) oneShotCommand(ctx context.Context, text string) (done bool, err error) {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == ":quit" || trimmed == ":exit":
		return true, errQuit
	case trimmed == ":help":
		fmt.Fprintln(r.out, helpText)
		return true, nil
	case trimmed == ":functors":
		for _, f := range r.eng.Functors() {
			fmt.Fprintln(r.out, f.String())
		}
		return true, nil
	case trimmed == ":trace on":
		r.eng.SetTraceEnabled(true)
		return true, nil
	case trimmed == ":trace off":
		r.eng.SetTraceEnabled(false)
		return true, nil
	default:
		return false, nil
	}
}

var errQuit = newError(":quit", "session ended")

const helpText = `commands:
  <rule>;           define a rule or fact
  ?= <goal>;         run an inline query
  :functors          list known functor/arity pairs
  :trace on|off      toggle trace capture for future queries
  :quit              exit the repl`

// eval dispatches a complete, semicolon-terminated statement: either a
// `?= goal;` query or one or more rule/fact definitions.
func (r *REPL) eval(ctx context.Context, stmt string) error {
	trimmed := strings.TrimSpace(stmt)
	if strings.HasPrefix(trimmed, "?=") {
		goalSrc := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(trimmed, "?=")), ";")
		return r.runQuery(ctx, goalSrc)
	}
	if err := r.eng.Load(stmt, r.filename); err != nil {
		return err
	}
	for {
		goal, ok := r.eng.NextInlineQuery()
		if !ok {
			return nil
		}
		if err := r.runGoal(ctx, goal); err != nil {
			return err
		}
	}
}

func (r *REPL) runQuery(ctx context.Context, goalSrc string) error {
	q, err := r.eng.NewQuery(goalSrc, r.filename)
	if err != nil {
		return err
	}
	return r.drive(ctx, q)
}

func (r *REPL) runGoal(ctx context.Context, goal rules.Goal) error {
	q := r.eng.NewQueryFromGoal(goal)
	return r.drive(ctx, q)
}

func (r *REPL) drive(ctx context.Context, q *vm.Query) error {
	var vars []term.Symbol
	var results []map[term.Symbol]*term.Term
	err := engine.Pump(ctx, q, r.reg, func(ev vm.Event) {
		if vars == nil {
			for v := range ev.Bindings {
				vars = append(vars, v)
			}
		}
		results = append(results, ev.Bindings)
	}, func(ev vm.Event) string {
		fmt.Fprintf(r.out, "debug: %s\n", ev.Message)
		return "continue"
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(r.out, "false")
		return nil
	}
	presentation.PrintBindings(r.out, vars, results)
	return nil
}
