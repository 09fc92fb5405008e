// Package selector implements the Auxiliary interface's range-selector
// mini-language: a small recursive-descent parser and evaluator over
// expressions of the shape `op(arg)` / `op(arg, arg)`, where an arg is
// either a quoted string (a kind or role name) or a nested call. It is
// explicitly not part of the core five-component algorithm —
// `internal/cst` never imports it — but gives `cx cst build --query` a way to name
// a CST subtree by role/kind path instead of by node index.
package selector

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/anthropics/cx/internal/cst"
)

// Expr is a parsed selector expression, ready to Eval against a tree.
type Expr interface {
	Eval(ctx []*cst.Node) ([]*cst.Node, error)
}

// Parse parses a selector string such as `children(role(root(), "condition"))`
// into an evaluatable Expr.
func Parse(input string) (Expr, error) {
	p := &parser{}
	p.s.Init(strings.NewReader(input))
	p.s.Filename = "selector"
	p.s.Mode = scanner.ScanIdents | scanner.ScanStrings | scanner.ScanInts
	p.next()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, fmt.Errorf("selector: unexpected trailing input at %s", p.s.Position)
	}
	return e, nil
}

// Eval parses and evaluates input against root in one call.
func Eval(root *cst.Node, input string) ([]*cst.Node, error) {
	e, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return e.Eval([]*cst.Node{root})
}

type parser struct {
	s   scanner.Scanner
	tok rune
	lit string
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.lit = p.s.TokenText()
}

// parseExpr parses `ident(arg (',' arg)*)`.
func (p *parser) parseExpr() (Expr, error) {
	if p.tok == scanner.String {
		s, err := strconv.Unquote(p.lit)
		if err != nil {
			return nil, fmt.Errorf("selector: bad string literal %q: %w", p.lit, err)
		}
		p.next()
		return literal(s), nil
	}
	if p.tok != scanner.Ident {
		return nil, fmt.Errorf("selector: expected identifier or string at %s, got %q", p.s.Position, p.lit)
	}
	name := p.lit
	p.next()
	if p.tok != '(' {
		return nil, fmt.Errorf("selector: expected '(' after %q at %s", name, p.s.Position)
	}
	p.next()

	var args []Expr
	if p.tok != ')' {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok == ',' {
				p.next()
				continue
			}
			break
		}
	}
	if p.tok != ')' {
		return nil, fmt.Errorf("selector: expected ')' closing %q at %s", name, p.s.Position)
	}
	p.next()

	fn, ok := operations[name]
	if !ok {
		return nil, fmt.Errorf("selector: unknown operation %q", name)
	}
	return &call{name: name, args: args, fn: fn}, nil
}

// literal is a bare quoted string used as an operation argument (a role or
// kind name); it has no standalone Eval meaning and is only ever consumed
// by a call's fn as a name, not evaluated against the node context.
type literal string

func (l literal) Eval(ctx []*cst.Node) ([]*cst.Node, error) {
	return nil, fmt.Errorf("selector: %q used as a node expression, expected a call", string(l))
}

type opFunc func(ctx []*cst.Node, args []Expr) ([]*cst.Node, error)

type call struct {
	name string
	args []Expr
	fn   opFunc
}

func (c *call) Eval(ctx []*cst.Node) ([]*cst.Node, error) {
	return c.fn(ctx, c.args)
}

// argString evaluates args[i] as a bare string literal argument.
func argString(args []Expr, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("selector: missing argument %d", i)
	}
	lit, ok := args[i].(literal)
	if !ok {
		return "", fmt.Errorf("selector: argument %d must be a quoted name", i)
	}
	return string(lit), nil
}

var operations = map[string]opFunc{
	// root() ignores ctx and returns it unchanged; it exists so a selector
	// can start `root()` for readability even though ctx already is the
	// root on the first call.
	"root": func(ctx []*cst.Node, args []Expr) ([]*cst.Node, error) {
		return ctx, nil
	},
	// children(expr) returns every direct child of every node expr yields.
	"children": func(ctx []*cst.Node, args []Expr) ([]*cst.Node, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("selector: children() takes exactly 1 argument")
		}
		nodes, err := args[0].Eval(ctx)
		if err != nil {
			return nil, err
		}
		var out []*cst.Node
		for _, n := range nodes {
			out = append(out, n.Children()...)
		}
		return out, nil
	},
	// kind(expr, "Name") walks each node expr yields and its descendants
	// (depth-first, the node itself included), keeping those whose
	// NodeKind's String() matches Name.
	"kind": func(ctx []*cst.Node, args []Expr) ([]*cst.Node, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("selector: kind() takes exactly 2 arguments")
		}
		nodes, err := args[0].Eval(ctx)
		if err != nil {
			return nil, err
		}
		name, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		var out []*cst.Node
		var walk func(n *cst.Node)
		walk = func(n *cst.Node) {
			if n.Kind().String() == name {
				out = append(out, n)
			}
			for _, c := range n.Children() {
				walk(c)
			}
		}
		for _, n := range nodes {
			walk(n)
		}
		return out, nil
	},
	// role(expr, "Name") selects the direct child of each node in expr that
	// carries the named role, skipping nodes without a match.
	"role": func(ctx []*cst.Node, args []Expr) ([]*cst.Node, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("selector: role() takes exactly 2 arguments")
		}
		nodes, err := args[0].Eval(ctx)
		if err != nil {
			return nil, err
		}
		name, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		var out []*cst.Node
		for _, n := range nodes {
			for _, c := range n.Children() {
				if c.Role().String() == name {
					out = append(out, c)
				}
			}
		}
		return out, nil
	},
	// nth(expr, "N") indexes into expr's result list.
	"nth": func(ctx []*cst.Node, args []Expr) ([]*cst.Node, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("selector: nth() takes exactly 2 arguments")
		}
		nodes, err := args[0].Eval(ctx)
		if err != nil {
			return nil, err
		}
		idxStr, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, fmt.Errorf("selector: nth() index %q is not an integer", idxStr)
		}
		if idx < 0 || idx >= len(nodes) {
			return nil, fmt.Errorf("selector: nth() index %d out of range (%d results)", idx, len(nodes))
		}
		return []*cst.Node{nodes[idx]}, nil
	},
}
