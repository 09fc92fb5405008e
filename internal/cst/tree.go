package cst

// Tree is the result of a successful Build: the root TranslationUnit node
// plus the identity lookups the Auxiliary range-selector (internal/cst/
// selector) and other consumers need after construction finishes and the
// pending forest has been discarded.
type Tree struct {
	root   *Node
	astMap *astToCSTMap
}

// Root returns the TranslationUnit node.
func (t *Tree) Root() *Node { return t.root }

// NodeForDecl returns the CST node folded for d's own declarator/definition,
// or nil if d was never registered (e.g. a bare function parameter, which
// has no identity of its own worth exposing).
func (t *Tree) NodeForDecl(d Decl) *Node { return t.astMap.find(declKey(d)) }

// NodeForStmt returns the CST node folded for s.
func (t *Tree) NodeForStmt(s Stmt) *Node { return t.astMap.find(stmtKey(s)) }

// NodeForQualifier returns the CST node folded for a nested-name-specifier
// location.
func (t *Tree) NodeForQualifier(n *NestedNameSpecifierLoc) *Node {
	return t.astMap.find(nnsKey(n))
}
