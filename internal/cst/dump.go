package cst

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented role/kind outline of the subtree rooted at n to w,
// one line per node, for inspecting a built tree without stepping through it
// in a debugger.
func Dump(w io.Writer, n *Node) {
	dumpNode(w, n, 0)
}

func dumpNode(w io.Writer, n *Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	if n.IsLeaf() {
		fmt.Fprintf(w, "%s%s %s %q\n", indent, n.Kind(), n.Role(), n.Token().Text())
		return
	}
	fmt.Fprintf(w, "%s%s %s\n", indent, n.Kind(), n.Role())
	for _, c := range n.Children() {
		dumpNode(w, c, depth+1)
	}
}
