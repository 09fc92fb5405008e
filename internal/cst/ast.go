package cst

// This file fixes the AST contract the Traversal Driver (builder.go)
// consumes: a small, tagged-variant stand-in for the semantic analyzer that
// would normally produce a typed AST. It is not part of the tree-building
// algorithm itself; it is the concrete shape of the algorithm's input.
// internal/cstfrontend produces values of these types from a real parse;
// tests construct them directly.

// SourceRange is an inclusive [Begin, End] pair of token locations.
type SourceRange struct {
	Begin Location
	End   Location
}

// IsValid reports whether both bounds are valid token locations.
func (r SourceRange) IsValid() bool { return r.Begin.IsValid() && r.End.IsValid() }

// Decl is any declaration AST node (translation unit member, tag,
// namespace, declarator-bearing declaration, template wrapper).
type Decl interface{ declNode() }

// Stmt is any statement AST node, including the ExprAsStmt marker used for
// an expression appearing directly in statement position.
type Stmt interface{ stmtNode() }

// Expr is any expression AST node.
type Expr interface{ exprNode() }

// ---- Declarations ----

// TranslationUnitDecl is the AST root.
type TranslationUnitDecl struct {
	Decls []Decl
}

func (*TranslationUnitDecl) declNode() {}

// NamespaceDecl is a namespace definition, or one component of a
// `namespace a::b {}` nested-sugar chain.
type NamespaceDecl struct {
	// KeywordLoc is valid only on the outermost component of a
	// `namespace a::b {}` chain; inner components have no `namespace`
	// keyword of their own.
	KeywordLoc Location
	NameLoc    Location
	Name       string
	// Inner holds the next nested-namespace-sugar component (`b` in
	// `namespace a::b {}`), or nil if this is the innermost component that
	// owns Body.
	Inner *NamespaceDecl
	Body  []Decl
	// Range is this component's own source range: for the outermost
	// component it starts at the `namespace` keyword; for an inner
	// component it starts at the `::` that precedes it.
	Range SourceRange
}

func (*NamespaceDecl) declNode() {}

// TagKeyword names the introducer keyword of a TagDecl.
type TagKeyword uint8

const (
	TagStruct TagKeyword = iota
	TagClass
	TagUnion
	TagEnum
)

// TagDecl is a class/struct/union/enum declaration, optionally a definition
// with a body.
type TagDecl struct {
	Keyword TagKeyword
	// TagBeginLoc is the tag-type's own begin location, used as the
	// declaration-range start instead of Range.Begin so that a preceding
	// template-parameter-list is dropped; it equals
	// Range.Begin unless this is a template specialization.
	TagBeginLoc Location
	NameLoc     Location // invalid for anonymous tags
	Name        string
	HasBody     bool
	LBraceLoc   Location
	RBraceLoc   Location
	Body        []Decl
	Range       SourceRange
	// IsTemplateSpecialization marks a ClassTemplateSpecializationDecl,
	// which needs the manual-descend override; our
	// hand-rolled recursive-descent traversal always descends explicitly,
	// so no special-casing is needed beyond documenting it here.
	IsTemplateSpecialization bool
	// NoSemicolon marks a decl that must not own a trailing semicolon
	// because an enclosing DeclStmt's statement range will consume it
	//, mirroring the source's DeclsWithoutSemicolons.
	NoSemicolon bool
}

func (*TagDecl) declNode() {}

// TypeLocKind identifies which spine shape a TypeLoc node has, for the
// inside-out GetStartLoc walk.
type TypeLocKind uint8

const (
	TLPointer TypeLocKind = iota
	TLReference
	TLBlockPointer
	TLMemberPointer
	TLParen
	TLFunctionProto
	TLOther // qualified type, plain type-specifier, etc: transparent passthrough
)

// TypeLoc models one node of the inside-out declarator type-location spine.
type TypeLoc struct {
	Kind TypeLocKind
	// LocalBegin is the location of the pointer/reference/paren symbol
	// itself; meaningful for TLPointer/TLReference/TLBlockPointer/
	// TLMemberPointer/TLParen.
	LocalBegin Location
	Inner      *TypeLoc // pointee/inner type, nil at the terminal type-specifier
	// HasTrailingReturn stops the walk before the suffix (TLFunctionProto
	// only): the trailing-return type is not part of the declarator prefix.
	HasTrailingReturn bool
	// End is this (outermost) TypeLoc's own source-range end; only the
	// value on the TypeLoc actually passed to a declarator matters.
	End Location
}

// Initializer describes a declarator's initializer, if any.
type Initializer struct {
	Range SourceRange
	Expr  Expr // may be nil if the initializer shape isn't tracked as an Expr
}

// SimpleDeclDecl is one declarator-bearing declaration: a single declarator
// in a possibly-chained `int a, *b = x;` group.
type SimpleDeclDecl struct {
	Type *TypeLoc // nil for a declarator with no type (never expected, but
	// DeclaratorRange handles Type==nil the same as a start-invalid TypeLoc)
	NameLoc Location // invalid for an anonymous declarator (e.g. a parameter)
	Init    *Initializer

	// ChainBeginLoc is shared by every declarator in the same comma-chain
	// declaration; NextInChain is nil for the last declarator.
	ChainBeginLoc Location
	NextInChain   *SimpleDeclDecl

	// DeclRange is the shared, whole-declaration source range (e.g. the
	// full `int a, *b = x` before the trailing semicolon rule); only its
	// Begin is used, and only when this declarator is last in chain.
	DeclRange SourceRange

	// Function declarator fields (nil/invalid when this is not a function).
	Params         *ParametersAndQualifiers
	TrailingReturn *TrailingReturn
	FunctionBody   *CompoundStmt // non-nil for a function definition

	NoSemicolon bool // see TagDecl.NoSemicolon
}

func (*SimpleDeclDecl) declNode() {}

// isResponsibleForCreatingDeclaration mirrors the source's method of the
// same name.
func (d *SimpleDeclDecl) isResponsibleForCreatingDeclaration() bool {
	next := d.NextInChain
	if next == nil {
		return true
	}
	return next.ChainBeginLoc != d.ChainBeginLoc
}

// ParametersAndQualifiers is a function declarator's parameter list.
type ParametersAndQualifiers struct {
	LParenLoc  Location
	RParenLoc  Location
	Parameters []*SimpleDeclDecl
	EndLoc     Location // end of the whole parameters-and-qualifiers clause
}

// TrailingReturn is the `-> T` suffix on an auto-return function declarator.
type TrailingReturn struct {
	ArrowLoc Location
	// ReturnType is the (possibly nil, for e.g. plain `-> int`) inner
	// declarator of the return type, when it itself has pointer/reference
	// structure worth representing (`-> int*`, say).
	ReturnType *TypeLoc
	Range      SourceRange
}

// TemplateDecl wraps a declaration with a `template<...>` introducer.
type TemplateDecl struct {
	TemplateKeywordLoc Location
	Inner              Decl
	Range              SourceRange
}

func (*TemplateDecl) declNode() {}

// ExplicitInstantiationDecl models `extern template ...;` /
// `template class Foo<int>;`.
type ExplicitInstantiationDecl struct {
	ExternLoc          Location // invalid if no `extern`
	TemplateKeywordLoc Location
	Inner              Decl
	Range              SourceRange
}

func (*ExplicitInstantiationDecl) declNode() {}

// ---- Statements ----

// ExprAsStmt marks an expression that appears directly in a statement
// position in the AST.
type ExprAsStmt struct {
	E Expr
}

func (*ExprAsStmt) stmtNode() {}

// DeclStmt wraps a local declaration appearing as a statement; its
// contained decl(s) must have NoSemicolon set, since this statement's own
// range computer consumes the trailing semicolon.
// Range excludes the trailing semicolon, which statementRange appends.
type DeclStmt struct {
	D     Decl
	Range SourceRange
}

func (*DeclStmt) stmtNode() {}

// CompoundStmt is a `{ ... }` block.
type CompoundStmt struct {
	LBraceLoc Location
	RBraceLoc Location
	Body      []Stmt
	Range     SourceRange
}

func (*CompoundStmt) stmtNode() {}

// IfStmt is `if (cond) then [else else]`, with an optional C++17 init
// statement.
type IfStmt struct {
	IfLoc     Location
	LParenLoc Location
	Init      Stmt // nil if absent
	Cond      Expr
	RParenLoc Location
	Then      Stmt
	ElseLoc   Location // invalid if no else
	Else      Stmt     // nil if no else
	Range     SourceRange
}

func (*IfStmt) stmtNode() {}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	WhileLoc  Location
	LParenLoc Location
	Cond      Expr
	RParenLoc Location
	Body      Stmt
	Range     SourceRange
}

func (*WhileStmt) stmtNode() {}

// ForStmt is a classic C-style for loop.
type ForStmt struct {
	ForLoc    Location
	LParenLoc Location
	Init      Stmt // nil if absent
	Cond      Expr // nil if absent
	Inc       Expr // nil if absent
	RParenLoc Location
	Body      Stmt
	Range     SourceRange
}

func (*ForStmt) stmtNode() {}

// RangeForStmt is `for (init; var : range) body`.
type RangeForStmt struct {
	ForLoc    Location
	LParenLoc Location
	Init      Stmt // nil if absent (C++20 init-statement)
	LoopVar   *SimpleDeclDecl
	ColonLoc  Location
	RangeExp  Expr
	RParenLoc Location
	Body      Stmt
	Range     SourceRange
}

func (*RangeForStmt) stmtNode() {}

// SwitchStmt is `switch (cond) body`.
type SwitchStmt struct {
	SwitchLoc Location
	LParenLoc Location
	Cond      Expr
	RParenLoc Location
	Body      Stmt
	Range     SourceRange
}

func (*SwitchStmt) stmtNode() {}

// CaseStmt is `case value: sub`.
type CaseStmt struct {
	CaseLoc Location
	Value   Expr
	Sub     Stmt
	Range   SourceRange
}

func (*CaseStmt) stmtNode() {}

// DefaultStmt is `default: sub`.
type DefaultStmt struct {
	DefaultLoc Location
	Sub        Stmt
	Range      SourceRange
}

func (*DefaultStmt) stmtNode() {}

// ReturnStmt is `return [value];`.
type ReturnStmt struct {
	ReturnLoc Location
	Value     Expr // nil if bare `return;`
	Range     SourceRange
}

func (*ReturnStmt) stmtNode() {}

// BreakStmt is `break;`.
type BreakStmt struct {
	BreakLoc Location
	Range    SourceRange
}

func (*BreakStmt) stmtNode() {}

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	ContinueLoc Location
	Range       SourceRange
}

func (*ContinueStmt) stmtNode() {}

// ---- Expressions ----

// NNSComponentKind classifies one component of a nested-name-specifier
// chain.
type NNSComponentKind uint8

const (
	NNSGlobal NNSComponentKind = iota
	NNSDecltype
	NNSSimpleTemplate
	NNSIdentifier
)

// NNSComponent is one qualifier component, e.g. `std` or `vector<int>` in
// `std::vector<int>::size_type`.
type NNSComponent struct {
	Kind Kind
	Range SourceRange // this component's own range, excluding the `::`
	ColonColonLoc Location
}

// Kind is a type alias so NNSComponent.Kind reads naturally; it is exactly
// an NNSComponentKind.
type Kind = NNSComponentKind

// NestedNameSpecifierLoc is a full qualifier chain, stored outermost-first.
type NestedNameSpecifierLoc struct {
	Components []NNSComponent
	Range      SourceRange // whole-qualifier range, including the final `::`
}

// IdExpr is a (possibly qualified) id-expression.
type IdExpr struct {
	Qualifier          *NestedNameSpecifierLoc // nil if unqualified
	TemplateKeywordLoc Location                // invalid if absent
	Name               string
	NameLoc            Location
	Range              SourceRange
}

func (*IdExpr) exprNode() {}

// MemberExpr is `a.b` / `a->b`. When Implicit is true (no explicit object,
// e.g. an implicit `this->`), only the id-expression is emitted.
type MemberExpr struct {
	Base      Expr
	AccessLoc Location
	IsArrow   bool
	Implicit  bool
	Member    *IdExpr
	Range     SourceRange
}

func (*MemberExpr) exprNode() {}

// PlaceholderArg is the synthetic argument postfix ++/-- carries at an
// invalid source location; the traversal driver
// skips it entirely.
type PlaceholderArg struct{}

func (*PlaceholderArg) exprNode() {}

// OperatorCallExpr is an overloaded-operator call, classified by
// classifyOperatorCall's operator/arity table.
type OperatorCallExpr struct {
	Op          Operator
	OperatorLoc Location
	Args        []Expr // may include a *PlaceholderArg
	Range       SourceRange
}

func (*OperatorCallExpr) exprNode() {}

// BinaryOperatorExpr is a built-in (non-overloaded) binary operator
// expression, e.g. `a + b` for fundamental types.
type BinaryOperatorExpr struct {
	LHS    Expr
	OpLoc  Location
	OpKind TokenKind
	RHS    Expr
	Range  SourceRange
}

func (*BinaryOperatorExpr) exprNode() {}

// UnaryOperatorExpr is a built-in prefix or postfix unary operator
// expression.
type UnaryOperatorExpr struct {
	OpLoc   Location
	OpKind  TokenKind
	Operand Expr
	Postfix bool
	Range   SourceRange
}

func (*UnaryOperatorExpr) exprNode() {}

// CallExpr is an ordinary (non-operator) function call; the core folds it
// via the Unknown* fallback.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Range  SourceRange
}

func (*CallExpr) exprNode() {}

// LiteralKind distinguishes basic literal kinds.
type LiteralKind uint8

const (
	LitInteger LiteralKind = iota
	LitFloating
	LitCharacter
	LitString
)

// Literal is a plain (non-user-defined) literal.
type Literal struct {
	LiteralKind LiteralKind
	Loc         Location
	Range       SourceRange
}

func (*Literal) exprNode() {}

// UserDefinedLiteralKind additionally distinguishes the raw/template
// literal-operator shapes that need re-classification from spelled text.
type UserDefinedLiteralKind uint8

const (
	UDLPlain UserDefinedLiteralKind = iota
	UDLRawOrTemplate
)

// UserDefinedLiteral is a literal with a user-defined suffix, e.g. `5_km`.
type UserDefinedLiteral struct {
	Kind        LiteralKind // semantic kind, when known directly
	UDLKind     UserDefinedLiteralKind
	SpelledText string // used to reclassify when UDLKind == UDLRawOrTemplate
	Loc         Location
	Range       SourceRange
}

func (*UserDefinedLiteral) exprNode() {}
