// Command repl is the interactive front end: it reads definitions, externs
// and bare expressions, lowers them into an executable IR module, evaluates
// each bare expression immediately and prints the result.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	slogmulti "github.com/samber/slog-multi"

	"kaleido/pkg/compiler"
	"kaleido/pkg/ir"
)

// lineReader adapts the liner prompt into the character stream the scanner
// wants: each read past the buffered input prompts for one more line.
type lineReader struct {
	line *liner.State
	buf  []byte
}

func (r *lineReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		input, err := r.line.Prompt("ready> ")
		if err != nil {
			// io.EOF or Ctrl-C ends the session.
			return 0, io.EOF
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		r.line.AppendHistory(input)
		r.buf = []byte(input + "\n")
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func newLogger(logPath string, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closer := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		closer = func() { f.Close() }
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

func main() {
	showIR := flag.Bool("show-ir", false, "dump the whole module as IR on exit")
	logPath := flag.String("log-file", "", "also write JSON logs to this file")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()

	logger, closeLog, err := newLogger(*logPath, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log file:", err)
		os.Exit(1)
	}
	defer closeLog()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, ".kaleido_history")
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println("kaleido — terminate each entry with ';'")

	module := ir.NewModule()
	session := compiler.NewSession(
		compiler.NewLexer(&lineReader{line: line}),
		compiler.DefaultPrecedence(),
		module,
	)
	session.Report = func(err error) {
		fmt.Fprintln(os.Stderr, "error:", err)
		logger.Debug("input rejected", "err", err)
	}
	session.OnDefinition = func(fn *compiler.Function, f compiler.Func) {
		logger.Debug("function defined", "name", f.Name(), "params", f.NumParams())
		fmt.Print(f)
	}
	session.OnExtern = func(proto *compiler.Prototype, f compiler.Func) {
		logger.Debug("extern declared", "name", f.Name())
		fmt.Print(f)
	}
	session.OnTopLevel = func(fn *compiler.Function, f compiler.Func) {
		v, err := module.Call(f.Name())
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			logger.Debug("evaluation failed", "err", err)
			return
		}
		fmt.Printf("= %g\n", v)
	}

	session.Run()

	if historyPath != "" {
		if f, err := os.Create(historyPath); err != nil {
			logger.Warn("write history", "err", err)
		} else {
			line.WriteHistory(f)
			f.Close()
		}
	}

	if *showIR {
		fmt.Print(module.String())
	}
}
