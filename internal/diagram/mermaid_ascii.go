package diagram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"
)

// MermaidASCIIBinary is the file name of the external ASCII renderer.
const MermaidASCIIBinary = "mermaid-ascii"

// RenderASCIIAuto renders with the mermaid-ascii binary from binDir when it is
// installed, falling back to RenderASCII.
func RenderASCIIAuto(ctx context.Context, g *Graph, binDir string) string {
	if binDir != "" {
		binPath := filepath.Join(binDir, MermaidASCIIBinary)
		if _, err := os.Stat(binPath); err == nil {
			result, err := RenderASCIIViaCLI(ctx, g, binPath)
			if err == nil {
				return result
			}
		}
	}
	return RenderASCII(g)
}

// RenderASCIIViaCLI pipes simplified Mermaid syntax through the mermaid-ascii binary.
func RenderASCIIViaCLI(ctx context.Context, g *Graph, binPath string) (string, error) {
	cmd := exec.CommandContext(ctx, binPath)
	cmd.Stdin = strings.NewReader(RenderMermaidForCLI(g))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("mermaid-ascii: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// RenderMermaidForCLI generates Mermaid syntax the mermaid-ascii CLI can
// parse: no node declarations, only edges between label-derived IDs.
func RenderMermaidForCLI(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	displayID := make(map[string]string)
	for _, e := range g.Elements() {
		displayID[e.ID] = cliNodeID(e)
	}

	for _, l := range g.Links() {
		label := ""
		if l.Label != "" {
			label = fmt.Sprintf("|%s|", l.Label)
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n", displayID[l.Source], label, displayID[l.Target]))
	}
	return b.String()
}

// cliNodeID turns a label into a Mermaid ID that stays readable in the
// rendered boxes: "Valid Payment?" becomes "Valid-Payment".
func cliNodeID(e *Element) string {
	words := strings.FieldsFunc(e.Label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return string(e.Kind)
	}
	return strings.Join(words, "-")
}
