// Command receipt-parse parses OCR text from a file or stdin and prints the result as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-scanner/internal/parsing"
)

func main() {
	fs := ff.NewFlagSet("receipt-parse")
	var (
		input  = fs.StringLong("input", "-", "File containing OCR text ('-' reads stdin)")
		pretty = fs.BoolLong("pretty", "Indent the JSON output")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PARSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*input, *pretty, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input string, pretty bool, stdin io.Reader, stdout io.Writer) error {
	var (
		text []byte
		err  error
	)
	if input == "-" {
		text, err = io.ReadAll(stdin)
	} else {
		text, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(parsing.Parse(string(text))); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
