// gen-diagrams generates sample diagram outputs for README documentation.
// Run: go run ./cmd/gen-diagrams
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/paper"
)

func main() {
	if err := run(context.Background(), filepath.Join("docs", "assets")); err != nil {
		fmt.Fprintf(os.Stderr, "gen-diagrams: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, outDir string) error {
	f, err := diagram.OrderFulfillment()
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	g := f.Graph

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	// ASCII (mermaid-ascii with hand-rolled fallback)
	home, _ := os.UserHomeDir()
	binDir := filepath.Join(home, ".flowpaper", "bin")
	ascii := diagram.RenderASCIIAuto(ctx, g, binDir)
	if err := write(outDir, "diagram-ascii.txt", []byte(ascii)); err != nil {
		return err
	}
	fmt.Println("=== ASCII ===")
	fmt.Println(ascii)

	mermaid := diagram.RenderMermaid(g)
	if err := write(outDir, "diagram-mermaid.md", []byte("```mermaid\n"+mermaid+"```\n")); err != nil {
		return err
	}
	fmt.Println("=== Mermaid ===")
	fmt.Println(mermaid)

	// Fitted paper at the default panel size.
	p, err := paper.New(1000, 800)
	if err != nil {
		return err
	}
	fitter, err := paper.NewFitter(p, g.BBox())
	if err != nil {
		return err
	}
	t, err := fitter.Fit(ctx, 1000, 800)
	if err != nil {
		return err
	}
	view := diagram.View{Width: t.Width, Height: t.Height, Matrix: t.Matrix()}

	svg, err := diagram.RenderSVG(ctx, g, view)
	if err != nil {
		return err
	}
	if err := write(outDir, "diagram-paper.svg", svg); err != nil {
		return err
	}

	png, err := diagram.RenderPNG(ctx, g, view)
	if err != nil {
		return err
	}
	if err := write(outDir, "diagram-paper.png", png); err != nil {
		return err
	}

	gv, err := diagram.RenderGraphviz(ctx, g, diagram.GraphvizPNG)
	if err != nil {
		return err
	}
	if err := write(outDir, "diagram-graphviz.png", gv); err != nil {
		return err
	}

	fmt.Printf("scale %.4f, ty %.2f\n", t.Scale, t.TY)
	return nil
}

func write(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
