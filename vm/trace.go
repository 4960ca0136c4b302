package vm

import "strings"

// TraceNode is one node of a query's trace tree. Tracing is opt-in per
// query; when disabled, no node is ever allocated. A node is created the
// moment its goal is pushed onto the continuation, and is attached to
// its parent's children regardless of whether the goal eventually
// succeeds, mirroring "each goal push grows a tree node; successful
// completion attaches the node to its parent" read together with the
// worked trace example, which shows every pushed goal rendered.
type TraceNode struct {
	Label    string
	Children []*TraceNode
}

func newTraceNode(label string) *TraceNode {
	return &TraceNode{Label: label}
}

func (n *TraceNode) prependChild(child *TraceNode) {
	n.Children = append([]*TraceNode{child}, n.Children...)
}

func (n *TraceNode) appendChild(child *TraceNode) {
	n.Children = append(n.Children, child)
}

// String renders the node as `label [\n  children…\n]` with two-space
// indentation per depth level, matching the wire-format example.
func (n *TraceNode) String() string {
	var b strings.Builder
	n.render(&b, 0)
	return b.String()
}

func (n *TraceNode) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(n.Label)
	b.WriteString(" [\n")
	for _, c := range n.Children {
		c.render(b, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("]\n")
}
