package diagram

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMermaidForCLI(t *testing.T) {
	result := RenderMermaidForCLI(MustOrderFulfillment().Graph)

	assert.True(t, strings.HasPrefix(result, "graph TD\n"))
	assert.Contains(t, result, "Start --> Add-to-Cart")
	assert.Contains(t, result, "Valid-Payment -->|Yes| Send-Order-to-Warehouse")
	assert.Contains(t, result, "Quality-Check -->|Not Ok| Send-Order-to-Warehouse")
	// Must NOT contain node declarations with ["..."] syntax.
	assert.NotContains(t, result, "[\"")
	assert.NotContains(t, result, "classDef")
}

func TestCLINodeID(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Start", "Start"},
		{"Valid Payment?", "Valid-Payment"},
		{"Send Order to Warehouse", "Send-Order-to-Warehouse"},
		{"???", "step"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, cliNodeID(NewStep(0, 0, tt.label)))
		})
	}
}

func TestRenderASCIIViaCLI(t *testing.T) {
	// Skip if mermaid-ascii is not installed.
	binPath := findMermaidASCII()
	if binPath == "" {
		t.Skip("mermaid-ascii binary not found, skipping CLI test")
	}

	result, err := RenderASCIIViaCLI(context.Background(), MustOrderFulfillment().Graph, binPath)
	require.NoError(t, err)
	assert.Contains(t, result, "Start")
	assert.Contains(t, result, "Pack-Order")
}

func TestRenderASCIIViaCLI_Failure(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, MermaidASCIIBinary)
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho broken >&2\nexit 3\n"), 0o755))

	_, err := RenderASCIIViaCLI(context.Background(), MustOrderFulfillment().Graph, bin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRenderASCIIAuto_UsesBinary(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, MermaidASCIIBinary)
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho from-binary\n"), 0o755))

	result := RenderASCIIAuto(context.Background(), MustOrderFulfillment().Graph, dir)
	assert.Equal(t, "from-binary\n", result)
}

func TestRenderASCIIAuto_Fallback(t *testing.T) {
	// With non-existent binDir, should fallback to hand-rolled.
	result := RenderASCIIAuto(context.Background(), MustOrderFulfillment().Graph, "/nonexistent/path")
	assert.Contains(t, result, "=== Order Fulfillment ===")
	assert.Contains(t, result, "Transitions:")
}

func TestRenderASCIIAuto_EmptyBinDir(t *testing.T) {
	result := RenderASCIIAuto(context.Background(), MustOrderFulfillment().Graph, "")
	assert.Contains(t, result, "Start")
}

// findMermaidASCII checks common paths for the mermaid-ascii binary.
func findMermaidASCII() string {
	home, _ := os.UserHomeDir()
	if home != "" {
		p := filepath.Join(home, ".flowpaper", "bin", MermaidASCIIBinary)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p := filepath.Join(os.TempDir(), MermaidASCIIBinary); fileExists(p) {
		return p
	}
	return ""
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
