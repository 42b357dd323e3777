// Command kalc compiles a source file (or stdin) to LLVM IR text.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"kaleido/pkg/compiler"
	"kaleido/pkg/llvmir"
)

func main() {
	dumpTokens := flag.Bool("dump-tokens", false, "print the token stream before parsing")
	dumpAST := flag.Bool("dump-ast", false, "print each parsed construct")
	outPath := flag.String("o", "", "write LLVM IR to this file instead of stdout")
	flag.Parse()

	var src []byte
	var err error
	if flag.NArg() > 0 {
		src, err = os.ReadFile(flag.Arg(0))
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}

	if *dumpTokens {
		fmt.Fprintln(os.Stderr, "Tokens")
		for _, tok := range compiler.Lex(string(src)) {
			fmt.Fprintln(os.Stderr, " ", tok)
		}
	}

	target := llvmir.NewTarget()
	failed := false
	session := compiler.NewSession(
		compiler.NewLexer(bytes.NewReader(src)),
		compiler.DefaultPrecedence(),
		target,
	)
	session.Report = func(err error) {
		failed = true
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	if *dumpAST {
		session.OnDefinition = func(fn *compiler.Function, _ compiler.Func) {
			fmt.Fprintln(os.Stderr, "def:   ", fn)
		}
		session.OnExtern = func(proto *compiler.Prototype, _ compiler.Func) {
			fmt.Fprintln(os.Stderr, "extern:", proto)
		}
		session.OnTopLevel = func(fn *compiler.Function, _ compiler.Func) {
			fmt.Fprintln(os.Stderr, "expr:  ", fn.Body)
		}
	}
	session.Run()
	if failed {
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create output:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, target.Module().String())
}
