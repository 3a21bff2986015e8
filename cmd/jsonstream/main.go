// Command jsonstream is a demo CLI exercising this module's pipeline, in the
// spirit of the teacher jsonstream project's cmd/pj: read JSON (or JSON
// Lines/JSON-seq), optionally select a subtree by path, and pretty-print the
// result, colorized when writing to a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	jsonencoding "github.com/cdauth/jsonstream-go/encoding/json"
	"github.com/cdauth/jsonstream-go/internal/format"
	"github.com/cdauth/jsonstream-go/jsonerr"
	"github.com/cdauth/jsonstream-go/jsonparser"
	"github.com/cdauth/jsonstream-go/path"
	"github.com/cdauth/jsonstream-go/pathtrack"
	"github.com/cdauth/jsonstream-go/token"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	signal.Ignore(syscall.SIGPIPE)

	var (
		filename string
		indent   int
		selector string
		multiDoc bool
		forceColors   bool
		disableColors bool
	)
	flag.StringVar(&filename, "file", "", "json input filename (stdin if omitted)")
	flag.IntVar(&indent, "indent", 2, "indent step for output (negative disables new lines)")
	flag.StringVar(&selector, "select", "", "dot-separated path selector, e.g. users.*.name")
	flag.BoolVar(&multiDoc, "jsonl", false, "accept a stream of JSON Lines / JSON-seq documents")
	flag.BoolVar(&forceColors, "colors", false, "force colored output")
	flag.BoolVar(&disableColors, "nocolors", false, "disable colored output")
	flag.Parse()

	if err := run(filename, indent, selector, multiDoc, forceColors, disableColors); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return
		}
		fmt.Fprintf(os.Stderr, "jsonstream: %s\n", err)
		os.Exit(1)
	}
}

func run(filename string, indent int, selector string, multiDoc, forceColors, disableColors bool) error {
	var input io.Reader = os.Stdin
	if filename != "" {
		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("opening %q: %w", filename, err)
		}
		defer f.Close()
		input = f
	}

	var colorizer *format.Colorizer
	useColor := isatty.IsTerminal(os.Stdout.Fd())
	if forceColors {
		useColor = true
	}
	if disableColors {
		useColor = false
	}
	if useColor {
		colorizer = &format.DefaultColorizer
	}

	var stdout io.Writer = os.Stdout
	if colorizer != nil {
		stdout = colorable.NewColorableStdout()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mode := jsonparser.SingleDocument
	if multiDoc {
		mode = jsonparser.MultiDocument
	}
	parser := jsonparser.NewFromReader(input, mode)

	var errs []error
	collectErr := func(err error) {
		if err != nil && !jsonerr.IsCancellation(err) {
			errs = append(errs, err)
		}
	}

	tokens := token.StartStream(ctx, parser, collectErr)

	var sink token.StreamSink
	printer := &format.DefaultPrinter{Writer: stdout, IndentSize: indent}
	encoder := &jsonencoding.Encoder{Printer: printer, Colorizer: colorizer}
	sink = encoder

	if selector == "" {
		if err := sink.Consume(ctx, tokens); err != nil {
			collectErr(err)
		}
	} else {
		pat, err := path.ParsePattern(selector)
		if err != nil {
			return err
		}
		annotated := pathtrack.RunDetector(ctx, tokens, collectErr)
		selected := pathtrack.RunSelector(ctx, annotated, pat, collectErr)
		plain := make(chan token.Token)
		go func() {
			defer close(plain)
			collectErr(pathtrack.TokensOnly(ctx, selected, plain))
		}()
		if err := sink.Consume(ctx, plain); err != nil {
			collectErr(err)
		}
	}
	if err := writeTrailingNewline(printer); err != nil {
		collectErr(err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// writeTrailingNewline prints the CLI's final newline through the same
// format.CatchPrinterError convention the encoder uses, rather than letting
// DefaultPrinter.PrintBytes's panic-on-write-error escape uncaught: a broken
// pipe here (stdout closed by a downstream reader, e.g. `| head`) must reach
// main's EPIPE check at line 49, not crash the process.
func writeTrailingNewline(printer format.Printer) (err error) {
	defer format.CatchPrinterError(&err)
	printer.PrintBytes([]byte("\n"))
	return nil
}
