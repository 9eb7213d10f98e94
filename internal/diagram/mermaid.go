package diagram

import (
	"fmt"
	"sort"
	"strings"
)

// RenderMermaid renders the graph as a Mermaid flowchart. Shapes follow the
// element kind and fills match the paper colours.
func RenderMermaid(g *Graph) string {
	names := Names(g)
	var b strings.Builder

	b.WriteString("graph TD\n")
	if g.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", g.Title))
	}

	for _, e := range g.Elements() {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(names[e.ID], e)))
	}

	for _, l := range g.Links() {
		label := ""
		if l.Label != "" {
			label = fmt.Sprintf("|%s|", mermaidEscapeLabel(l.Label))
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n", names[l.Source], label, names[l.Target]))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("    classDef start fill:%s,stroke:none,color:%s\n", StartColor, FontFill))
	b.WriteString(fmt.Sprintf("    classDef step fill:%s,stroke:none,color:%s\n", StepColor, FontFill))
	b.WriteString(fmt.Sprintf("    classDef decision fill:%s,stroke:none,color:%s\n", DecisionColor, FontFill))
	b.WriteString(fmt.Sprintf("    linkStyle default stroke:%s,stroke-width:%gpx\n", FlowColor, LineWidth))

	byKind := make(map[CellKind][]string)
	for _, e := range g.Elements() {
		byKind[e.Kind] = append(byKind[e.Kind], names[e.ID])
	}
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		b.WriteString(fmt.Sprintf("    class %s %s\n", strings.Join(byKind[CellKind(k)], ","), k))
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the shape of its kind.
func mermaidNodeDef(id string, e *Element) string {
	label := mermaidEscapeLabel(e.Label)
	switch e.Kind {
	case KindStart:
		return fmt.Sprintf("%s([\"%s\"])", id, label)
	case KindDecision:
		return fmt.Sprintf("%s{\"%s\"}", id, label)
	default:
		return fmt.Sprintf("%s[\"%s\"]", id, label)
	}
}

// mermaidEscapeLabel replaces characters Mermaid treats as syntax.
func mermaidEscapeLabel(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "\n", "<br/>", "|", "#124;")
	return r.Replace(s)
}
