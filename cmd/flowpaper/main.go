// Command flowpaper serves and renders the order-fulfillment flowchart:
// a web panel that fits the diagram to the browser viewport, an MCP server
// for agents, and one-shot render and query commands.
package main

import (
	"fmt"
	"io"
	"os"
)

const usage = `usage: flowpaper <command> [flags]

commands:
  serve      run the web panel (default)
  render     render the diagram: -format svg|png|graphviz|graphviz-svg|dot|mermaid|ascii|json
  query      run a jq filter over the graph document
  validate   check the diagram and print warnings
  mcp        serve MCP tools over stdio
  install    write ~/.flowpaper/settings.json and install mermaid-ascii
  version    print the version
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return runServe(args)
	case "render":
		return runRender(args, stdout, stderr)
	case "query":
		return runQuery(args, stdout, stderr)
	case "validate":
		return runValidate(stdout, stderr)
	case "mcp":
		return runMCP()
	case "install":
		return runInstall(args, stdout, stderr)
	case "version", "-v", "--version":
		printVersion(stdout)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
