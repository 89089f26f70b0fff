// Package graphexport renders a task graph as Graphviz DOT text.
//
// This is a text writer only: unlike the source, which shelled out to
// pygraphviz to lay out and rasterize a PNG, this package stops at
// producing the .dot source. Rendering an image is a concern for whatever
// graphviz installation the caller has on their PATH, not this module.
package graphexport

import (
	"fmt"
	"io"

	"scriptweaver/internal/core"
)

// WriteDOT walks root's input graph and writes it as a DOT digraph to w,
// one edge per (consumer, producer) pair. A unit with no inputs — every
// InputTask, and any Task that happens to declare none — appears only as
// an implicit node if some other unit depends on it; isolated units with
// no consumer are not visited.
func WriteDOT(w io.Writer, root core.Unit) error {
	if _, err := fmt.Fprintln(w, "digraph scriptweaver {"); err != nil {
		return err
	}
	visited := make(map[string]bool)
	if err := walk(w, root, visited); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// inputsProvider is implemented by *core.Task (InputTask has no inputs of
// its own, so it is always a leaf in this walk).
type inputsProvider interface {
	Inputs() []*core.Connector
}

func walk(w io.Writer, node core.Unit, visited map[string]bool) error {
	if visited[node.Key()] {
		return nil
	}
	visited[node.Key()] = true

	ip, ok := node.(inputsProvider)
	if !ok {
		return nil
	}
	for _, conn := range ip.Inputs() {
		parent := conn.Parent()
		if _, err := fmt.Fprintf(w, "  %q -> %q;\n", nodeName(node), nodeName(parent)); err != nil {
			return err
		}
		if err := walk(w, parent, visited); err != nil {
			return err
		}
	}
	return nil
}

func nodeName(u core.Unit) string { return u.Key() }
