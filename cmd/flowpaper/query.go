package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rendis/flowpaper/internal/diagram"
)

func runQuery(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	raw := fs.Bool("r", false, "print string results without JSON quotes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: flowpaper query [-r] '<jq filter>'")
	}

	a, err := commandApp(stderr)
	if err != nil {
		return err
	}

	data, err := diagram.Document(a.graph).Map()
	if err != nil {
		return err
	}
	results, err := a.query.EvaluateAll(context.Background(), fs.Arg(0), data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for _, r := range results {
		if s, ok := r.(string); ok && *raw {
			fmt.Fprintln(stdout, s)
			continue
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
