package ast

import (
	"fmt"
	"io"
	"strings"
)

// maxLabel bounds the source text shown beside each node in Fprint output.
const maxLabel = 60

// Fprint writes an indented outline of the tree rooted at node, one node
// per line with its type and source form.
func Fprint(w io.Writer, node Node) error {
	p := &printer{w: w}
	Walk(p, node)
	return p.err
}

type printer struct {
	w     io.Writer
	depth int
	err   error
}

func (p *printer) Visit(node Node) Visitor {
	if node == nil {
		p.depth--
		return nil
	}
	if p.err == nil {
		label := strings.ReplaceAll(node.String(), "\n", " ")
		if len(label) > maxLabel {
			label = label[:maxLabel-3] + "..."
		}
		_, p.err = fmt.Fprintf(p.w, "%s%s  %s\n", strings.Repeat("  ", p.depth), typeName(node), label)
	}
	p.depth++
	return p
}
