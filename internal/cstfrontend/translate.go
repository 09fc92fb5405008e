package cstfrontend

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/anthropics/cx/internal/cst"
	"github.com/anthropics/cx/internal/parser"
)

// UnsupportedConstructError reports a syntactic construct this frontend's
// grammar subset does not lower — raised here, before cst.Build is ever
// called, since the AST contract has no representation for these
// constructs at all.
type UnsupportedConstructError struct {
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("cstfrontend: not yet supported: %s", e.Construct)
}

// SupportedGrammarSubsets lists the grammar-subset names Translate accepts
// via cx's CST config. There is only one today; the name is still checked
// explicitly so a typo'd or future config value fails fast with a clear
// error instead of silently parsing as whatever tree-sitter grammar happens
// to be wired.
var SupportedGrammarSubsets = []string{"cpp17"}

// UnsupportedGrammarSubsetError is returned when a configured grammar
// subset name isn't one Translate knows how to lower.
type UnsupportedGrammarSubsetError struct {
	GrammarSubset string
}

func (e *UnsupportedGrammarSubsetError) Error() string {
	return fmt.Sprintf("cstfrontend: unsupported grammar subset %q (supported: %v)", e.GrammarSubset, SupportedGrammarSubsets)
}

// ValidateGrammarSubset reports whether name is a grammar subset Translate
// accepts.
func ValidateGrammarSubset(name string) error {
	for _, s := range SupportedGrammarSubsets {
		if s == name {
			return nil
		}
	}
	return &UnsupportedGrammarSubsetError{GrammarSubset: name}
}

// Translate lexes and parses src as C++ (via internal/parser's tree-sitter
// wrapping) and lowers the result into the internal/cst AST contract plus
// its matching expanded token stream, ready for cst.Build.
//
// Because tree-sitter is a purely syntactic parser with no type information,
// this frontend cannot distinguish a built-in operator from an overloaded
// operator call the way a semantic analyzer could; every syntactic
// binary/unary/postfix operator therefore lowers to
// BinaryOperatorExpr/UnaryOperatorExpr, never OperatorCallExpr.
// OperatorCallExpr is exercised only by hand-built ASTs in internal/cst's
// own tests, standing in for a semantic analyzer this repo does not
// implement.
func Translate(src []byte) (*cst.TranslationUnitDecl, []cst.Token, error) {
	lex := NewLexer(string(src))
	tokens, err := lex.Tokens()
	if err != nil {
		return nil, nil, err
	}

	p, err := parser.NewParser(parser.Cpp)
	if err != nil {
		return nil, nil, fmt.Errorf("cstfrontend: create parser: %w", err)
	}
	defer p.Close()

	res, err := p.Parse(src)
	if err != nil {
		return nil, nil, fmt.Errorf("cstfrontend: parse: %w", err)
	}
	defer res.Close()

	if res.Root == nil {
		return nil, nil, &UnsupportedConstructError{Construct: "empty parse tree"}
	}

	tr := &translator{src: src, tokens: tokens, starts: lex.starts, ends: lex.ends}
	tu, err := tr.translationUnit(res.Root)
	if err != nil {
		return nil, nil, err
	}
	return tu, tokens, nil
}

type translator struct {
	src    []byte
	tokens []cst.Token
	starts []int
	ends   []int
}

// unsupported builds an UnsupportedConstructError naming n's grammar type
// and the byte offset it starts at, for a useful diagnostic.
func (t *translator) unsupported(n *sitter.Node, why string) error {
	return &UnsupportedConstructError{Construct: fmt.Sprintf("%s (%s at byte %d)", why, n.Type(), n.StartByte())}
}

// locStart returns the Location of the token beginning exactly at byte off.
func (t *translator) locStart(off int) (cst.Location, bool) {
	i := sort.SearchInts(t.starts, off)
	if i < len(t.starts) && t.starts[i] == off {
		return cst.Location(i), true
	}
	return cst.InvalidLocation, false
}

// locEnd returns the Location of the token ending exactly at byte off.
func (t *translator) locEnd(off int) (cst.Location, bool) {
	i := sort.SearchInts(t.ends, off)
	if i < len(t.ends) && t.ends[i] == off {
		return cst.Location(i), true
	}
	return cst.InvalidLocation, false
}

// rangeOf computes the SourceRange spanned by n's own bytes, by locating the
// first and last token whose spans lie inside n.
func (t *translator) rangeOf(n *sitter.Node) (cst.SourceRange, error) {
	begin, ok := t.locStart(int(n.StartByte()))
	if !ok {
		return cst.SourceRange{}, t.unsupported(n, "node start does not align to a lexed token")
	}
	end, ok := t.locEnd(int(n.EndByte()))
	if !ok {
		return cst.SourceRange{}, t.unsupported(n, "node end does not align to a lexed token")
	}
	return cst.SourceRange{Begin: begin, End: end}, nil
}

// tokenLoc returns the Location of the single token n covers, for leaf
// nodes (identifiers, keywords, punctuation).
func (t *translator) tokenLoc(n *sitter.Node) (cst.Location, error) {
	loc, ok := t.locStart(int(n.StartByte()))
	if !ok {
		return cst.InvalidLocation, t.unsupported(n, "leaf token does not align to a lexed token")
	}
	return loc, nil
}

func (t *translator) text(n *sitter.Node) string {
	return string(t.src[n.StartByte():n.EndByte()])
}

// ---- Translation unit ----

func (t *translator) translationUnit(root *sitter.Node) (*cst.TranslationUnitDecl, error) {
	tu := &cst.TranslationUnitDecl{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		ds, err := t.topLevelDecl(child)
		if err != nil {
			return nil, err
		}
		tu.Decls = append(tu.Decls, ds...)
	}
	return tu, nil
}

// topLevelDecl dispatches one translation-unit or namespace-body member,
// returning zero or more Decls (a tag-plus-co-declared-variable declaration
// produces two; a comment produces none).
func (t *translator) topLevelDecl(n *sitter.Node) ([]cst.Decl, error) {
	switch n.Type() {
	case "function_definition":
		d, err := t.functionDefinition(n)
		return single(d, err)
	case "declaration":
		return t.declaration(n)
	case "namespace_definition":
		d, err := t.namespaceDefinition(n)
		return single(d, err)
	case "struct_specifier", "class_specifier", "union_specifier", "enum_specifier":
		d, err := t.tagDecl(n)
		return single(d, err)
	case "template_declaration":
		d, err := t.templateDeclaration(n)
		return single(d, err)
	case "comment":
		return nil, nil
	default:
		return nil, t.unsupported(n, "unsupported top-level construct")
	}
}

// single wraps a (Decl, error) pair from a helper that never fans out into
// the []Decl shape topLevelDecl and its callers use uniformly.
func single(d cst.Decl, err error) ([]cst.Decl, error) {
	if err != nil {
		return nil, err
	}
	return []cst.Decl{d}, nil
}

// ---- Declarations ----

// declarator peels pointer/reference/paren layers off a tree-sitter
// declarator node and returns the terminal identifier along with the
// TypeLoc spine, built inside-out the way a type's spelling nests around
// its declared name.
func (t *translator) declarator(n *sitter.Node) (nameLoc cst.Location, name string, spine *cst.TypeLoc, params *cst.ParametersAndQualifiers, trailing *cst.TrailingReturn, err error) {
	switch n.Type() {
	case "identifier", "field_identifier", "namespace_identifier":
		loc, e := t.tokenLoc(n)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		return loc, t.text(n), nil, nil, nil, nil

	case "pointer_declarator":
		star := n.Child(0)
		starLoc, e := t.tokenLoc(star)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		inner := n.ChildByFieldName("declarator")
		innerName, innerNameText, innerSpine, innerParams, innerTrailing, e := t.declarator(inner)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		spine := &cst.TypeLoc{Kind: cst.TLPointer, LocalBegin: starLoc, Inner: innerSpine, End: starLoc}
		return innerName, innerNameText, spine, innerParams, innerTrailing, nil

	case "reference_declarator":
		amp := n.Child(0)
		ampLoc, e := t.tokenLoc(amp)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		inner := n.NamedChild(0)
		innerName, innerNameText, innerSpine, innerParams, innerTrailing, e := t.declarator(inner)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		spine := &cst.TypeLoc{Kind: cst.TLReference, LocalBegin: ampLoc, Inner: innerSpine, End: ampLoc}
		return innerName, innerNameText, spine, innerParams, innerTrailing, nil

	case "function_declarator":
		inner := n.ChildByFieldName("declarator")
		innerName, innerNameText, innerSpine, _, _, e := t.declarator(inner)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		paramList := n.ChildByFieldName("parameters")
		p, e := t.parametersAndQualifiers(paramList)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		var tr *cst.TrailingReturn
		if trailingNode := n.ChildByFieldName("trailing_return_type"); trailingNode != nil {
			tr, e = t.trailingReturnType(trailingNode)
			if e != nil {
				return 0, "", nil, nil, nil, e
			}
		}
		return innerName, innerNameText, innerSpine, p, tr, nil

	case "parenthesized_declarator":
		lparenLoc, e := t.tokenLoc(n.Child(0))
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		inner := n.NamedChild(0)
		innerName, innerNameText, innerSpine, innerParams, innerTrailing, e := t.declarator(inner)
		if e != nil {
			return 0, "", nil, nil, nil, e
		}
		end := innerName
		if innerSpine != nil {
			end = innerSpine.End
		}
		return innerName, innerNameText, &cst.TypeLoc{Kind: cst.TLParen, LocalBegin: lparenLoc, Inner: innerSpine, End: end}, innerParams, innerTrailing, nil

	default:
		return 0, "", nil, nil, nil, t.unsupported(n, "unsupported declarator shape")
	}
}

func (t *translator) parametersAndQualifiers(n *sitter.Node) (*cst.ParametersAndQualifiers, error) {
	if n == nil {
		return nil, nil
	}
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	p := &cst.ParametersAndQualifiers{LParenLoc: rng.Begin, RParenLoc: rng.End, EndLoc: rng.End}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		param := n.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		decl := param.ChildByFieldName("declarator")
		var (
			nameLoc  = cst.InvalidLocation
			spine    *cst.TypeLoc
			typeNode = param.ChildByFieldName("type")
		)
		if decl != nil {
			loc, _, s, _, _, err := t.declarator(decl)
			if err != nil {
				return nil, err
			}
			nameLoc, spine = loc, s
		}
		end := cst.InvalidLocation
		if typeNode != nil {
			r, err := t.rangeOf(typeNode)
			if err != nil {
				return nil, err
			}
			end = r.End
		}
		full := &cst.TypeLoc{Kind: cst.TLOther, Inner: spine, End: end}
		p.Parameters = append(p.Parameters, &cst.SimpleDeclDecl{Type: full, NameLoc: nameLoc, ChainBeginLoc: nameLoc})
	}
	return p, nil
}

func (t *translator) trailingReturnType(n *sitter.Node) (*cst.TrailingReturn, error) {
	arrow := n.Child(0)
	arrowLoc, err := t.tokenLoc(arrow)
	if err != nil {
		return nil, err
	}
	typeNode := n.ChildByFieldName("type")
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	tr := &cst.TrailingReturn{ArrowLoc: arrowLoc, Range: rng}
	if typeNode != nil {
		typeRng, err := t.rangeOf(typeNode)
		if err != nil {
			return nil, err
		}
		tr.ReturnType = &cst.TypeLoc{Kind: cst.TLOther, End: typeRng.End}
	}
	return tr, nil
}

// declaration lowers a `type decl-list ;` top-level or block-scope
// declaration into one or more Decls. The common case is a single chain of
// SimpleDeclDecl, honoring the "only the first declarator is listed, the
// rest via NextInChain" contract. When
// the declaration's type is itself a tag definition (`struct S {...} s;`)
// it returns the TagDecl followed by the co-declared variable's own chain
// as a second Decl, both sharing the tag's begin location (DESIGN.md
// decision 7); the AST contract has no single node modeling that pairing,
// so callers that can only hold one Decl (a DeclStmt) reject the pairing
// instead of dropping half of it silently.
func (t *translator) declaration(n *sitter.Node) ([]cst.Decl, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}

	var declaratorNodes []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "init_declarator", "pointer_declarator", "reference_declarator",
			"function_declarator", "identifier", "parenthesized_declarator":
			declaratorNodes = append(declaratorNodes, c)
		}
	}

	if typeNode := n.ChildByFieldName("type"); typeNode != nil {
		switch typeNode.Type() {
		case "struct_specifier", "class_specifier", "union_specifier", "enum_specifier":
			tag, err := t.tagDecl(typeNode)
			if err != nil {
				return nil, err
			}
			if len(declaratorNodes) == 0 {
				return []cst.Decl{tag}, nil
			}
			tag.NoSemicolon = true
			chain, err := t.declaratorChain(declaratorNodes, rng.Begin)
			if err != nil {
				return nil, err
			}
			return []cst.Decl{tag, chain}, nil
		}
	}

	if len(declaratorNodes) == 0 {
		return nil, t.unsupported(n, "declaration with no declarator")
	}
	chain, err := t.declaratorChain(declaratorNodes, rng.Begin)
	if err != nil {
		return nil, err
	}
	return []cst.Decl{chain}, nil
}

// declaratorChain lowers a comma-separated declarator list sharing one
// ChainBeginLoc into a linked SimpleDeclDecl chain.
func (t *translator) declaratorChain(declaratorNodes []*sitter.Node, chainBegin cst.Location) (*cst.SimpleDeclDecl, error) {
	var head, tail *cst.SimpleDeclDecl
	for _, dn := range declaratorNodes {
		var initExpr *cst.Initializer
		declNode := dn
		if dn.Type() == "init_declarator" {
			declNode = dn.ChildByFieldName("declarator")
			valueNode := dn.ChildByFieldName("value")
			if valueNode != nil {
				e, err := t.expression(valueNode)
				if err != nil {
					return nil, err
				}
				valRng, err := t.rangeOf(valueNode)
				if err != nil {
					return nil, err
				}
				initExpr = &cst.Initializer{Range: valRng, Expr: e}
			}
		}
		nameLoc, _, spine, params, trailing, err := t.declarator(declNode)
		if err != nil {
			return nil, err
		}
		d := &cst.SimpleDeclDecl{
			Type:           &cst.TypeLoc{Kind: cst.TLOther, Inner: spine, End: nameLoc},
			NameLoc:        nameLoc,
			Init:           initExpr,
			ChainBeginLoc:  chainBegin,
			Params:         params,
			TrailingReturn: trailing,
		}
		if head == nil {
			head = d
		} else {
			tail.NextInChain = d
		}
		tail = d
	}
	return head, nil
}

func (t *translator) functionDefinition(n *sitter.Node) (cst.Decl, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	declNode := n.ChildByFieldName("declarator")
	if declNode == nil {
		return nil, t.unsupported(n, "function definition with no declarator")
	}
	nameLoc, _, spine, params, trailing, err := t.declarator(declNode)
	if err != nil {
		return nil, err
	}
	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, t.unsupported(n, "function definition with no body")
	}
	body, err := t.compoundStatement(bodyNode)
	if err != nil {
		return nil, err
	}
	return &cst.SimpleDeclDecl{
		Type:          &cst.TypeLoc{Kind: cst.TLOther, Inner: spine, End: nameLoc},
		NameLoc:       nameLoc,
		ChainBeginLoc: rng.Begin,
		Params:        params,
		TrailingReturn: trailing,
		FunctionBody:  body,
	}, nil
}

func (t *translator) namespaceDefinition(n *sitter.Node) (cst.Decl, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	kw := n.Child(0)
	kwLoc, err := t.tokenLoc(kw)
	if err != nil {
		return nil, err
	}
	nameNode := n.ChildByFieldName("name")
	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, t.unsupported(n, "namespace with no body")
	}

	var names []string
	var nameLocs []cst.Location
	var nameLoc cst.Location = cst.InvalidLocation
	if nameNode != nil {
		if nameNode.Type() == "nested_namespace_specifier" {
			for i := 0; i < int(nameNode.NamedChildCount()); i++ {
				names = append(names, t.text(nameNode.NamedChild(i)))
				loc, err := t.tokenLoc(nameNode.NamedChild(i))
				if err != nil {
					return nil, err
				}
				nameLocs = append(nameLocs, loc)
			}
		} else {
			names = append(names, t.text(nameNode))
			nameLoc, err = t.tokenLoc(nameNode)
			if err != nil {
				return nil, err
			}
		}
	}
	if len(names) == 0 {
		names = []string{""}
	}

	body, err := t.declList(bodyNode)
	if err != nil {
		return nil, err
	}

	// Fold the nested-sugar chain from the innermost component outward, so
	// the outermost NamespaceDecl (returned) carries KeywordLoc and the
	// innermost owns Body, matching ast.go's Inner-chain contract.
	innermost := &cst.NamespaceDecl{NameLoc: nameLoc, Name: names[len(names)-1], Body: body, Range: rng}
	cur := innermost
	for i := len(names) - 2; i >= 0; i-- {
		// cur (component i+1) is nested sugar: no keyword of its own, and
		// its range starts at the `::` token just before its name.
		cur.KeywordLoc = cst.InvalidLocation
		cur.Range.Begin = nameLocs[i+1] - 1
		cur = &cst.NamespaceDecl{Name: names[i], Inner: cur, Range: rng}
	}
	cur.KeywordLoc = kwLoc
	return cur, nil
}

func (t *translator) declList(n *sitter.Node) ([]cst.Decl, error) {
	var out []cst.Decl
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ds, err := t.topLevelDecl(n.NamedChild(i))
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
	}
	return out, nil
}

func (t *translator) tagDecl(n *sitter.Node) (*cst.TagDecl, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	var kw cst.TagKeyword
	switch n.Type() {
	case "struct_specifier":
		kw = cst.TagStruct
	case "class_specifier":
		kw = cst.TagClass
	case "union_specifier":
		kw = cst.TagUnion
	case "enum_specifier":
		kw = cst.TagEnum
	default:
		return nil, t.unsupported(n, "not a tag specifier")
	}
	tagBeginLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	d := &cst.TagDecl{Keyword: kw, TagBeginLoc: tagBeginLoc, NameLoc: cst.InvalidLocation, LBraceLoc: cst.InvalidLocation, RBraceLoc: cst.InvalidLocation, Range: rng}
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		d.Name = t.text(nameNode)
		d.NameLoc, err = t.tokenLoc(nameNode)
		if err != nil {
			return nil, err
		}
	}
	bodyNode := n.ChildByFieldName("body")
	if bodyNode != nil {
		d.HasBody = true
		d.LBraceLoc, err = t.tokenLoc(bodyNode.Child(0))
		if err != nil {
			return nil, err
		}
		d.RBraceLoc, err = t.tokenLoc(bodyNode.Child(int(bodyNode.ChildCount()) - 1))
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			field := bodyNode.NamedChild(i)
			switch field.Type() {
			case "field_declaration":
				fd, err := t.fieldDeclaration(field)
				if err != nil {
					return nil, err
				}
				d.Body = append(d.Body, fd)
			case "enumerator", "enumerator_list":
				// Enumerators carry no declarator/statement structure this
				// AST contract models; they are skipped rather than
				// mis-modeled as a SimpleDeclDecl.
			default:
				sub, err := t.topLevelDecl(field)
				if err != nil {
					return nil, err
				}
				d.Body = append(d.Body, sub...)
			}
		}
	}
	return d, nil
}

// fieldDeclaration lowers a struct/class member declaration the same way a
// top-level `declaration` node is lowered.
func (t *translator) fieldDeclaration(n *sitter.Node) (cst.Decl, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	declNode := n.ChildByFieldName("declarator")
	if declNode == nil {
		return nil, t.unsupported(n, "field declaration with no declarator")
	}
	nameLoc, _, spine, params, trailing, err := t.declarator(declNode)
	if err != nil {
		return nil, err
	}
	return &cst.SimpleDeclDecl{
		Type:          &cst.TypeLoc{Kind: cst.TLOther, Inner: spine, End: nameLoc},
		NameLoc:       nameLoc,
		ChainBeginLoc: rng.Begin,
		Params:        params,
		TrailingReturn: trailing,
	}, nil
}

func (t *translator) templateDeclaration(n *sitter.Node) (cst.Decl, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	kwLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	var inner cst.Decl
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		c := n.NamedChild(i)
		if c.Type() == "template_parameter_list" {
			continue
		}
		ds, err := t.topLevelDecl(c)
		if err != nil {
			return nil, err
		}
		if len(ds) != 1 {
			return nil, t.unsupported(n, "template declaration wrapping a tag-plus-variable pair is not supported")
		}
		inner = ds[0]
		break
	}
	if inner == nil {
		return nil, t.unsupported(n, "template declaration with no wrapped declaration")
	}
	return &cst.TemplateDecl{TemplateKeywordLoc: kwLoc, Inner: inner, Range: rng}, nil
}

// ---- Statements ----

func (t *translator) statement(n *sitter.Node) (cst.Stmt, error) {
	switch n.Type() {
	case "compound_statement":
		return t.compoundStatement(n)
	case "if_statement":
		return t.ifStatement(n)
	case "while_statement":
		return t.whileStatement(n)
	case "for_statement":
		return t.forStatement(n)
	case "for_range_loop":
		return t.forRangeLoop(n)
	case "switch_statement":
		return t.switchStatement(n)
	case "case_statement":
		return t.caseStatement(n)
	case "return_statement":
		return t.returnStatement(n)
	case "break_statement":
		rng, err := t.rangeOf(n)
		if err != nil {
			return nil, err
		}
		return &cst.BreakStmt{BreakLoc: rng.Begin, Range: rng}, nil
	case "continue_statement":
		rng, err := t.rangeOf(n)
		if err != nil {
			return nil, err
		}
		return &cst.ContinueStmt{ContinueLoc: rng.Begin, Range: rng}, nil
	case "expression_statement":
		return t.expressionStatement(n)
	case "declaration":
		return t.declStatement(n)
	default:
		return nil, t.unsupported(n, "unsupported statement")
	}
}

func (t *translator) compoundStatement(n *sitter.Node) (*cst.CompoundStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	lb, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	rb, err := t.tokenLoc(n.Child(int(n.ChildCount()) - 1))
	if err != nil {
		return nil, err
	}
	cs := &cst.CompoundStmt{LBraceLoc: lb, RBraceLoc: rb, Range: rng}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		s, err := t.statement(n.NamedChild(i))
		if err != nil {
			return nil, err
		}
		cs.Body = append(cs.Body, s)
	}
	return cs, nil
}

func (t *translator) declStatement(n *sitter.Node) (*cst.DeclStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	ds, err := t.declaration(n)
	if err != nil {
		return nil, err
	}
	if len(ds) != 1 {
		return nil, t.unsupported(n, "a tag-plus-variable declaration in statement position needs two Decls, which DeclStmt cannot hold")
	}
	markNoSemicolon(ds[0])
	return &cst.DeclStmt{D: ds[0], Range: rng}, nil
}

// markNoSemicolon flags a tag declaration, or every declarator in a chain,
// as owned by an enclosing DeclStmt, whose own statementRange consumes the
// trailing semicolon.
func markNoSemicolon(d cst.Decl) {
	if td, ok := d.(*cst.TagDecl); ok {
		td.NoSemicolon = true
		return
	}
	sd, ok := d.(*cst.SimpleDeclDecl)
	if !ok {
		return
	}
	for cur := sd; cur != nil; cur = cur.NextInChain {
		cur.NoSemicolon = true
	}
}

func (t *translator) ifStatement(n *sitter.Node) (*cst.IfStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	ifLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	condNode := n.ChildByFieldName("condition")
	cond, err := t.expression(unwrapCondition(condNode))
	if err != nil {
		return nil, err
	}
	thenNode := n.ChildByFieldName("consequence")
	then, err := t.statement(thenNode)
	if err != nil {
		return nil, err
	}
	s := &cst.IfStmt{IfLoc: ifLoc, LParenLoc: cst.InvalidLocation, Cond: cond, RParenLoc: cst.InvalidLocation, Then: then, ElseLoc: cst.InvalidLocation, Range: rng}
	if altNode := n.ChildByFieldName("alternative"); altNode != nil {
		elseKw := findChildOfType(n, "else")
		if elseKw != nil {
			s.ElseLoc, err = t.tokenLoc(elseKw)
			if err != nil {
				return nil, err
			}
		}
		s.Else, err = t.statement(altNode)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// unwrapCondition drops tree-sitter-cpp's `condition_clause` wrapper node
// (`( expr )`) down to the bare expression, matching how the AST contract
// only ever carries an Expr for Cond, not a parenthesized clause.
func unwrapCondition(n *sitter.Node) *sitter.Node {
	if n == nil {
		return n
	}
	if n.Type() == "condition_clause" || n.Type() == "parenthesized_expression" {
		if n.NamedChildCount() > 0 {
			return unwrapCondition(n.NamedChild(0))
		}
	}
	return n
}

func findChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return n.Child(i)
		}
	}
	return nil
}

func (t *translator) whileStatement(n *sitter.Node) (*cst.WhileStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	whileLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	cond, err := t.expression(unwrapCondition(n.ChildByFieldName("condition")))
	if err != nil {
		return nil, err
	}
	body, err := t.statement(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	return &cst.WhileStmt{WhileLoc: whileLoc, LParenLoc: cst.InvalidLocation, Cond: cond, RParenLoc: cst.InvalidLocation, Body: body, Range: rng}, nil
}

func (t *translator) forStatement(n *sitter.Node) (*cst.ForStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	forLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	fs := &cst.ForStmt{ForLoc: forLoc, LParenLoc: cst.InvalidLocation, RParenLoc: cst.InvalidLocation, Range: rng}
	if initNode := n.ChildByFieldName("initializer"); initNode != nil {
		switch initNode.Type() {
		case "declaration":
			fs.Init, err = t.declStatement(initNode)
		default:
			var e cst.Expr
			e, err = t.expression(initNode)
			if err == nil {
				fs.Init = &cst.ExprAsStmt{E: e}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if condNode := n.ChildByFieldName("condition"); condNode != nil {
		fs.Cond, err = t.expression(condNode)
		if err != nil {
			return nil, err
		}
	}
	if updateNode := n.ChildByFieldName("update"); updateNode != nil {
		fs.Inc, err = t.expression(updateNode)
		if err != nil {
			return nil, err
		}
	}
	fs.Body, err = t.statement(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func (t *translator) forRangeLoop(n *sitter.Node) (*cst.RangeForStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	forLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	declNode := n.ChildByFieldName("declarator")
	if declNode == nil {
		return nil, t.unsupported(n, "range-for with no loop variable declarator")
	}
	nameLoc, _, spine, _, _, err := t.declarator(declNode)
	if err != nil {
		return nil, err
	}
	typeNode := n.ChildByFieldName("type")
	var typeEnd cst.Location = nameLoc
	if typeNode != nil {
		r, err := t.rangeOf(typeNode)
		if err != nil {
			return nil, err
		}
		typeEnd = r.End
	}
	loopVar := &cst.SimpleDeclDecl{Type: &cst.TypeLoc{Kind: cst.TLOther, Inner: spine, End: typeEnd}, NameLoc: nameLoc, ChainBeginLoc: nameLoc}

	colon := findChildOfType(n, ":")
	var colonLoc cst.Location = cst.InvalidLocation
	if colon != nil {
		colonLoc, err = t.tokenLoc(colon)
		if err != nil {
			return nil, err
		}
	}
	rightNode := n.ChildByFieldName("right")
	rangeExp, err := t.expression(rightNode)
	if err != nil {
		return nil, err
	}
	body, err := t.statement(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	return &cst.RangeForStmt{
		ForLoc: forLoc, LParenLoc: cst.InvalidLocation, LoopVar: loopVar,
		ColonLoc: colonLoc, RangeExp: rangeExp, RParenLoc: cst.InvalidLocation,
		Body: body, Range: rng,
	}, nil
}

func (t *translator) switchStatement(n *sitter.Node) (*cst.SwitchStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	switchLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	cond, err := t.expression(unwrapCondition(n.ChildByFieldName("condition")))
	if err != nil {
		return nil, err
	}
	bodyNode := n.ChildByFieldName("body")
	body, err := t.compoundStatement(bodyNode)
	if err != nil {
		return nil, err
	}
	return &cst.SwitchStmt{SwitchLoc: switchLoc, LParenLoc: cst.InvalidLocation, Cond: cond, RParenLoc: cst.InvalidLocation, Body: body, Range: rng}, nil
}

// caseStatement lowers tree-sitter-cpp's single case_statement node (which
// bundles the label and every statement up to the next label) into this
// AST's one-Sub-statement CaseStmt/DefaultStmt shape by wrapping multiple
// trailing statements in a synthetic CompoundStmt when there is more than
// one — the source has no braces there, so the synthetic block's Range
// matches its first and last statement's own span rather than owning a
// `{`/`}` pair of its own.
func (t *translator) caseStatement(n *sitter.Node) (cst.Stmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	valueNode := n.ChildByFieldName("value")
	var subStmts []cst.Stmt
	var subNodes []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == valueNode {
			continue
		}
		s, err := t.statement(c)
		if err != nil {
			return nil, err
		}
		subStmts = append(subStmts, s)
		subNodes = append(subNodes, c)
	}
	sub, err := t.wrapAsSingleStmt(subStmts, subNodes)
	if err != nil {
		return nil, err
	}
	if valueNode == nil {
		kwLoc, err := t.tokenLoc(n.Child(0))
		if err != nil {
			return nil, err
		}
		return &cst.DefaultStmt{DefaultLoc: kwLoc, Sub: sub, Range: rng}, nil
	}
	kwLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	val, err := t.expression(valueNode)
	if err != nil {
		return nil, err
	}
	return &cst.CaseStmt{CaseLoc: kwLoc, Value: val, Sub: sub, Range: rng}, nil
}

// wrapAsSingleStmt collapses a slice of statements down to the one Sub a
// CaseStmt/DefaultStmt can hold: nil for an empty (fallthrough) case, the
// statement itself if there is exactly one, or otherwise a synthetic
// CompoundStmt whose brace locations and Range are the first statement's
// begin and the last statement's end (nodes are the statements' own
// tree-sitter nodes).
func (t *translator) wrapAsSingleStmt(stmts []cst.Stmt, nodes []*sitter.Node) (cst.Stmt, error) {
	switch len(stmts) {
	case 0:
		return nil, nil
	case 1:
		return stmts[0], nil
	default:
		first, err := t.rangeOf(nodes[0])
		if err != nil {
			return nil, err
		}
		last, err := t.rangeOf(nodes[len(nodes)-1])
		if err != nil {
			return nil, err
		}
		span := cst.SourceRange{Begin: first.Begin, End: last.End}
		return &cst.CompoundStmt{LBraceLoc: span.Begin, RBraceLoc: span.End, Body: stmts, Range: span}, nil
	}
}

func (t *translator) returnStatement(n *sitter.Node) (*cst.ReturnStmt, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	kwLoc, err := t.tokenLoc(n.Child(0))
	if err != nil {
		return nil, err
	}
	rs := &cst.ReturnStmt{ReturnLoc: kwLoc, Range: rng}
	if n.NamedChildCount() > 0 {
		rs.Value, err = t.expression(n.NamedChild(0))
		if err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func (t *translator) expressionStatement(n *sitter.Node) (*cst.ExprAsStmt, error) {
	if n.NamedChildCount() == 0 {
		return nil, t.unsupported(n, "empty expression statement")
	}
	e, err := t.expression(n.NamedChild(0))
	if err != nil {
		return nil, err
	}
	return &cst.ExprAsStmt{E: e}, nil
}

// ---- Expressions ----

func (t *translator) expression(n *sitter.Node) (cst.Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("cstfrontend: nil expression node")
	}
	switch n.Type() {
	case "parenthesized_expression":
		// Parens are elided: the tree never folds a dedicated parenthesized
		// node, and the inner expression's own range already excludes them.
		if n.NamedChildCount() == 0 {
			return nil, t.unsupported(n, "empty parenthesized expression")
		}
		return t.expression(n.NamedChild(0))

	case "identifier", "field_identifier", "namespace_identifier", "this":
		return t.identifierExpr(n)

	case "qualified_identifier":
		return t.qualifiedIdentifierExpr(n)

	case "field_expression":
		return t.fieldExpr(n)

	case "call_expression":
		return t.callExpr(n)

	case "binary_expression", "assignment_expression":
		return t.binaryExpr(n)

	case "unary_expression":
		return t.unaryExpr(n)

	case "update_expression":
		return t.updateExpr(n)

	case "user_defined_literal":
		// A suffixed literal (`5_km`, `"s"_sv`): the literal helpers split
		// the suffix from the whole node's spelling.
		switch n.Child(0).Type() {
		case "number_literal":
			return t.numberLiteral(n)
		case "char_literal":
			return t.literal(n, cst.LitCharacter)
		default:
			return t.literal(n, cst.LitString)
		}

	case "number_literal":
		return t.numberLiteral(n)

	case "string_literal":
		return t.literal(n, cst.LitString)

	case "char_literal":
		return t.literal(n, cst.LitCharacter)

	case "true", "false", "nullptr":
		return t.identifierExpr(n)

	default:
		return nil, t.unsupported(n, "unsupported expression")
	}
}

func (t *translator) identifierExpr(n *sitter.Node) (*cst.IdExpr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	return &cst.IdExpr{
		TemplateKeywordLoc: cst.InvalidLocation,
		Name:               t.text(n),
		NameLoc:            rng.Begin,
		Range:              rng,
	}, nil
}

// qualifiedIdentifierExpr lowers `a::b::c` into an IdExpr whose Qualifier
// carries every `a::`/`b::` component outermost-first (ast.go's chosen
// layout), by walking the tree-sitter grammar's inside-out
// qualified_identifier nesting (scope holds the outer prefix, name holds
// the next component) and reversing it during collection.
func (t *translator) qualifiedIdentifierExpr(n *sitter.Node) (*cst.IdExpr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	var components []cst.NNSComponent
	cur := n
	for cur != nil && cur.Type() == "qualified_identifier" {
		scope := cur.ChildByFieldName("scope")
		if scope == nil {
			return nil, t.unsupported(cur, "qualified identifier with no scope")
		}
		colonColon := findChildOfType(cur, "::")
		var ccLoc cst.Location = cst.InvalidLocation
		if colonColon != nil {
			ccLoc, err = t.tokenLoc(colonColon)
			if err != nil {
				return nil, err
			}
		}
		// componentNode is just this component's own identifier, not the
		// whole (possibly further-qualified) scope subtree: for a::b::c,
		// scope is itself a qualified_identifier "a::b" and its own "name"
		// field ("b") is this component's spelling.
		componentNode := scope
		if scope.Type() == "qualified_identifier" {
			componentNode = scope.ChildByFieldName("name")
			if componentNode == nil {
				return nil, t.unsupported(scope, "qualified identifier with no name")
			}
		}
		if t.text(componentNode) == "__super" {
			return nil, t.unsupported(componentNode, "Microsoft __super specifier")
		}
		compRng, err := t.rangeOf(componentNode)
		if err != nil {
			return nil, err
		}
		components = append([]cst.NNSComponent{{Kind: cst.NNSIdentifier, Range: compRng, ColonColonLoc: ccLoc}}, components...)
		cur = scope
		if cur.Type() != "qualified_identifier" {
			break
		}
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil, t.unsupported(n, "qualified identifier with no name")
	}
	nameRng, err := t.rangeOf(nameNode)
	if err != nil {
		return nil, err
	}
	lastComp := components[len(components)-1]
	qualRng := cst.SourceRange{Begin: rng.Begin, End: lastComp.Range.End}
	if lastComp.ColonColonLoc.IsValid() {
		qualRng.End = lastComp.ColonColonLoc
	}
	return &cst.IdExpr{
		Qualifier:          &cst.NestedNameSpecifierLoc{Components: components, Range: qualRng},
		TemplateKeywordLoc: cst.InvalidLocation,
		Name:               t.text(nameNode),
		NameLoc:            nameRng.Begin,
		Range:              rng,
	}, nil
}

func (t *translator) fieldExpr(n *sitter.Node) (*cst.MemberExpr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	baseNode := n.ChildByFieldName("argument")
	base, err := t.expression(baseNode)
	if err != nil {
		return nil, err
	}
	opNode := findChildOfType(n, "->")
	isArrow := opNode != nil
	if opNode == nil {
		opNode = findChildOfType(n, ".")
	}
	if opNode == nil {
		return nil, t.unsupported(n, "field expression with no access operator")
	}
	accessLoc, err := t.tokenLoc(opNode)
	if err != nil {
		return nil, err
	}
	fieldNode := n.ChildByFieldName("field")
	member, err := t.identifierExpr(fieldNode)
	if err != nil {
		return nil, err
	}
	return &cst.MemberExpr{Base: base, AccessLoc: accessLoc, IsArrow: isArrow, Member: member, Range: rng}, nil
}

func (t *translator) callExpr(n *sitter.Node) (*cst.CallExpr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	fnNode := n.ChildByFieldName("function")
	callee, err := t.expression(fnNode)
	if err != nil {
		return nil, err
	}
	argsNode := n.ChildByFieldName("arguments")
	ce := &cst.CallExpr{Callee: callee, Range: rng}
	if argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			a, err := t.expression(argsNode.NamedChild(i))
			if err != nil {
				return nil, err
			}
			ce.Args = append(ce.Args, a)
		}
	}
	return ce, nil
}

func (t *translator) binaryExpr(n *sitter.Node) (*cst.BinaryOperatorExpr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	if n.ChildCount() != 3 {
		return nil, t.unsupported(n, "binary expression with unexpected shape")
	}
	lhsNode, opNode, rhsNode := n.Child(0), n.Child(1), n.Child(2)
	lhs, err := t.expression(lhsNode)
	if err != nil {
		return nil, err
	}
	rhs, err := t.expression(rhsNode)
	if err != nil {
		return nil, err
	}
	opLoc, err := t.tokenLoc(opNode)
	if err != nil {
		return nil, err
	}
	opTok := t.tokens[opLoc]
	return &cst.BinaryOperatorExpr{LHS: lhs, OpLoc: opLoc, OpKind: opTok.TokenKind(), RHS: rhs, Range: rng}, nil
}

func (t *translator) unaryExpr(n *sitter.Node) (*cst.UnaryOperatorExpr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	if n.ChildCount() != 2 {
		return nil, t.unsupported(n, "unary expression with unexpected shape")
	}
	opNode, argNode := n.Child(0), n.Child(1)
	opLoc, err := t.tokenLoc(opNode)
	if err != nil {
		return nil, err
	}
	operand, err := t.expression(argNode)
	if err != nil {
		return nil, err
	}
	return &cst.UnaryOperatorExpr{OpLoc: opLoc, OpKind: t.tokens[opLoc].TokenKind(), Operand: operand, Range: rng}, nil
}

// updateExpr lowers pre/post ++/-- (tree-sitter-cpp's own update_expression
// node, distinct from unary_expression) by checking whether the operator
// token comes before or after the operand.
func (t *translator) updateExpr(n *sitter.Node) (*cst.UnaryOperatorExpr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	if n.ChildCount() != 2 {
		return nil, t.unsupported(n, "update expression with unexpected shape")
	}
	a, b := n.Child(0), n.Child(1)
	// tree-sitter-cpp puts the operand first for postfix (`x++`) and the
	// operator first for prefix (`++x`); check which child spells the
	// operator rather than assuming a fixed child order.
	var opNode, argNode *sitter.Node
	var postfix bool
	if isOperatorText(t.text(a)) {
		opNode, argNode, postfix = a, b, false
	} else {
		argNode, opNode, postfix = a, b, true
	}
	opLoc, err := t.tokenLoc(opNode)
	if err != nil {
		return nil, err
	}
	operand, err := t.expression(argNode)
	if err != nil {
		return nil, err
	}
	return &cst.UnaryOperatorExpr{OpLoc: opLoc, OpKind: t.tokens[opLoc].TokenKind(), Operand: operand, Postfix: postfix, Range: rng}, nil
}

func isOperatorText(s string) bool {
	return s == "++" || s == "--"
}

func (t *translator) numberLiteral(n *sitter.Node) (cst.Expr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	text := t.text(n)
	udl, suffix := splitUserDefinedSuffix(text, true)
	numericPart := text
	if udl {
		numericPart = text[:len(text)-len(suffix)]
	}
	kind := cst.LitInteger
	if strings.ContainsRune(numericPart, '.') || (!strings.HasPrefix(numericPart, "0x") && !strings.HasPrefix(numericPart, "0X") && strings.ContainsAny(numericPart, "eE")) {
		kind = cst.LitFloating
	}
	if udl {
		return &cst.UserDefinedLiteral{Kind: kind, UDLKind: udlKindOf(suffix), SpelledText: text, Loc: rng.Begin, Range: rng}, nil
	}
	return &cst.Literal{LiteralKind: kind, Loc: rng.Begin, Range: rng}, nil
}

func (t *translator) literal(n *sitter.Node, kind cst.LiteralKind) (cst.Expr, error) {
	rng, err := t.rangeOf(n)
	if err != nil {
		return nil, err
	}
	text := t.text(n)
	if udl, suffix := splitUserDefinedSuffix(text, false); udl {
		return &cst.UserDefinedLiteral{Kind: kind, UDLKind: udlKindOf(suffix), SpelledText: text, Loc: rng.Begin, Range: rng}, nil
	}
	return &cst.Literal{LiteralKind: kind, Loc: rng.Begin, Range: rng}, nil
}

// splitUserDefinedSuffix reports whether spelling carries a user-defined
// literal suffix and returns it. For numeric literals, a trailing run of
// letters that is not one of the built-in integer suffixes (u/l/ll/f, in
// any case/order) counts as user-defined; for string/char literals, any
// identifier immediately after the closing quote does.
func splitUserDefinedSuffix(spelling string, numeric bool) (bool, string) {
	if !numeric {
		if i := strings.LastIndexAny(spelling, `"'`); i >= 0 && i+1 < len(spelling) {
			return true, spelling[i+1:]
		}
		return false, ""
	}
	i := len(spelling)
	for i > 0 && isSuffixRune(spelling[i-1]) {
		i--
	}
	suffix := strings.ToLower(spelling[i:])
	switch suffix {
	case "", "u", "l", "ul", "lu", "ll", "ull", "llu", "f":
		return false, ""
	default:
		return true, spelling[i:]
	}
}

func isSuffixRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

// udlKindOf classifies a UDL suffix's own shape: a suffix starting with `_`
// (like `_km`) is UDLPlain; any other suffix (like `km`) is
// UDLRawOrTemplate.
func udlKindOf(suffix string) cst.UserDefinedLiteralKind {
	if strings.HasPrefix(suffix, "_") {
		return cst.UDLPlain
	}
	return cst.UDLRawOrTemplate
}
