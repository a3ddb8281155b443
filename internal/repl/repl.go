// Package repl implements the interactive read-parse-execute loop: it reads
// multiline input terminated by `;`, splits it into statements, and runs
// each one through the parser and engine, printing the fixed user-visible
// result or error message for each, in the same shape the teacher's
// top-level command loops use (plain fmt.Fprintln over an io.Writer,
// log.Fatal reserved for unrecoverable, non-user-facing failures).
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mizukoshi/sqlengine/internal/config"
	"github.com/mizukoshi/sqlengine/internal/dberrors"
	"github.com/mizukoshi/sqlengine/internal/engine"
	"github.com/mizukoshi/sqlengine/internal/parser"
)

// REPL drives one interactive session over an input/output pair.
type REPL struct {
	in     *bufio.Scanner
	out    io.Writer
	engine *engine.Engine
	cfg    config.Config
}

func New(r io.Reader, w io.Writer, eng *engine.Engine, cfg config.Config) *REPL {
	return &REPL{in: bufio.NewScanner(r), out: w, engine: eng, cfg: cfg}
}

// Run reads statements until EOF or EXIT, and returns the process exit code.
func (r *REPL) Run() int {
	for {
		fmt.Fprint(r.out, r.cfg.Prompt)
		if !r.in.Scan() {
			return 0
		}
		buf := r.in.Text()

		for !strings.Contains(buf, ";") {
			if !r.in.Scan() {
				return 0
			}
			buf += "\n" + r.in.Text()
		}

		statements := strings.Split(buf, ";")
		for _, stmt := range statements[:len(statements)-1] {
			outcome, exitCode := r.runStatement(strings.TrimSpace(stmt) + ";")
			if outcome == endSession {
				return exitCode
			}
			if outcome == endBuffer {
				break
			}
		}
	}
}

type outcome int

const (
	keepGoing outcome = iota
	endBuffer         // a Syntax Error: discard the rest of this input buffer only
	endSession        // EXIT, or an internal/store failure
)

// runStatement parses and executes one `;`-terminated statement.
func (r *REPL) runStatement(stmt string) (outcome, int) {
	if r.cfg.Echo {
		fmt.Fprintln(r.out, stmt)
	}

	parsed, err := parser.Parse(strings.TrimSuffix(stmt, ";"))
	if err != nil {
		fmt.Fprintln(r.out, err.Error())
		return endBuffer, 0
	}

	msg, err := r.engine.Execute(parsed)
	var exit *engine.Exit
	if errors.As(err, &exit) {
		return endSession, 0
	}
	var dbErr *dberrors.Error
	if errors.As(err, &dbErr) {
		fmt.Fprintln(r.out, dbErr.Error())
		return keepGoing, 0
	}
	if err != nil {
		fmt.Fprintln(r.out, "fatal:", err)
		return endSession, 1
	}

	fmt.Fprintln(r.out, msg)
	return keepGoing, 0
}
