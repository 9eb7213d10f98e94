package main

import (
	"fmt"
	"io"
)

// runValidate prints the validation report for the assembled diagram.
// Assembly already rejects errors, so reaching the report means the graph
// is valid; warnings are listed.
func runValidate(stdout, stderr io.Writer) error {
	a, err := commandApp(stderr)
	if err != nil {
		return err
	}

	result := a.validator.Validate(a.graph)
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "warning %s [%s] %s\n", w.Path, w.Code, w.Message)
	}
	fmt.Fprintf(stdout, "ok: %d elements, %d links, %d warnings\n",
		len(a.graph.Elements()), len(a.graph.Links()), len(result.Warnings))
	return nil
}
