package cst

import "testing"

// tok is a small helper for hand-assembling an expanded token stream in
// tests; index doubles as Location, matching NewToken's contract.
func tok(i int, k TokenKind, text string) Token {
	return NewToken(i, k, text, true)
}

// newTestBuilder mirrors Build's setup without requiring a
// TranslationUnitDecl, so tests can drive buildStmt/buildExpr directly for
// constructs a translation unit's top level never holds on its own (a bare
// statement).
func newTestBuilder(tokens []Token) (*Builder, *Arena) {
	arena := NewArena(len(tokens))
	tokPtrs := make([]*Token, len(tokens))
	owned := make([]Token, len(tokens))
	copy(owned, tokens)
	for i := range owned {
		tokPtrs[i] = &owned[i]
	}
	return &Builder{
		arena:  arena,
		tokens: NewTokenIndex(tokPtrs),
		forest: newPendingForest(tokPtrs, arena),
		astMap: newASTToCSTMap(),
	}, arena
}

func finish(b *Builder) *Node {
	root := b.arena.newTree(TranslationUnit)
	var first, last Location = InvalidLocation, InvalidLocation
	for loc := range b.forest.entries {
		if !first.IsValid() || loc < first {
			first = loc
		}
	}
	// Recompute last from the walked chain to stay correct regardless of
	// map iteration order.
	entries, ok := b.forest.walkRange(first, lastEntryEnd(b.forest, first))
	if !ok {
		panic("test setup: forest is not a clean partition")
	}
	last = entries[len(entries)-1].lastTok
	b.forest.foldChildren(first, last, root)
	return b.forest.finalize()
}

func lastEntryEnd(f *pendingForest, first Location) Location {
	cur := first
	var last Location
	for {
		n := f.entries[cur]
		if n == nil {
			return last
		}
		last = n.lastTok
		cur = n.lastTok + 1
	}
}

// checkInvariants walks a completed tree and checks the builder's universal
// invariants: every node is Original, and the leaves partition the
// non-EOF tokens in order with no gaps or repeats.
func checkInvariants(t *testing.T, root *Node, nonEOFCount int) {
	t.Helper()
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Original() {
			t.Errorf("node %v is not marked Original", n.Kind())
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)

	leaves := root.Leaves()
	if len(leaves) != nonEOFCount {
		t.Fatalf("Leaves() covers %d tokens, want %d", len(leaves), nonEOFCount)
	}
	for i, l := range leaves {
		if int(l.Loc()) != i {
			t.Errorf("leaves out of order at position %d: token loc %d", i, l.Loc())
		}
	}
}

// TestBuild_BinaryExpressionStatement covers `a + b;`: the AST holds a bare
// BinaryOperatorExpr in statement position, which the driver must wrap in
// an ExpressionStatement.
func TestBuild_BinaryExpressionStatement(t *testing.T) {
	// a(0) +(1) b(2) ;(3)
	tokens := []Token{
		tok(0, TokIdentifier, "a"),
		tok(1, TokPlus, "+"),
		tok(2, TokIdentifier, "b"),
		tok(3, TokSemi, ";"),
	}
	a := &IdExpr{Name: "a", NameLoc: 0, TemplateKeywordLoc: InvalidLocation, Range: SourceRange{0, 0}}
	b := &IdExpr{Name: "b", NameLoc: 2, TemplateKeywordLoc: InvalidLocation, Range: SourceRange{2, 2}}
	bin := &BinaryOperatorExpr{LHS: a, OpLoc: 1, OpKind: TokPlus, RHS: b, Range: SourceRange{0, 2}}

	b1, _ := newTestBuilder(tokens)
	b1.buildStmt(&ExprAsStmt{E: bin})
	root := finish(b1)
	checkInvariants(t, root, 4)

	if root.Kind() != TranslationUnit {
		t.Fatalf("root kind = %v", root.Kind())
	}
	exprStmt := root.Children()[0]
	if exprStmt.Kind() != ExpressionStatement {
		t.Fatalf("child kind = %v, want ExpressionStatement", exprStmt.Kind())
	}
	binNode := exprStmt.Children()[0]
	if binNode.Kind() != BinaryOperatorExpression {
		t.Fatalf("inner kind = %v, want BinaryOperatorExpression", binNode.Kind())
	}
	if binNode.FindChild(LeftHandSide) == nil || binNode.FindChild(RightHandSide) == nil {
		t.Fatalf("BinaryOperatorExpression missing lhs/rhs roles: children=%v", binNode.Children())
	}
	if got := binNode.FindChild(OperatorToken); got == nil || got.Token().Text() != "+" {
		t.Fatalf("BinaryOperatorExpression missing operatorToken role")
	}
}

// TestBuild_IfElse covers `if (x) y; else z;`, including the then/else
// role assignments and the wrap of both branches into ExpressionStatements.
func TestBuild_IfElse(t *testing.T) {
	// if(0) ((1) x(2) )(3) y(4) ;(5) else(6) z(7) ;(8)
	tokens := []Token{
		tok(0, TokKwIf, "if"),
		tok(1, TokLParen, "("),
		tok(2, TokIdentifier, "x"),
		tok(3, TokRParen, ")"),
		tok(4, TokIdentifier, "y"),
		tok(5, TokSemi, ";"),
		tok(6, TokKwElse, "else"),
		tok(7, TokIdentifier, "z"),
		tok(8, TokSemi, ";"),
	}
	cond := &IdExpr{Name: "x", NameLoc: 2, TemplateKeywordLoc: InvalidLocation, Range: SourceRange{2, 2}}
	then := &ExprAsStmt{E: &IdExpr{Name: "y", NameLoc: 4, TemplateKeywordLoc: InvalidLocation, Range: SourceRange{4, 4}}}
	els := &ExprAsStmt{E: &IdExpr{Name: "z", NameLoc: 7, TemplateKeywordLoc: InvalidLocation, Range: SourceRange{7, 7}}}
	ifStmt := &IfStmt{IfLoc: 0, LParenLoc: 1, Cond: cond, RParenLoc: 3, Then: then, ElseLoc: 6, Else: els}

	b1, _ := newTestBuilder(tokens)
	b1.buildStmt(ifStmt)
	root := finish(b1)
	checkInvariants(t, root, 9)

	ifNode := root.Children()[0]
	if ifNode.Kind() != IfStatement {
		t.Fatalf("kind = %v, want IfStatement", ifNode.Kind())
	}
	if ifNode.FindChild(Condition) == nil {
		t.Fatal("missing condition role")
	}
	thenNode := ifNode.FindChild(ThenStatement)
	if thenNode == nil || thenNode.Kind() != ExpressionStatement {
		t.Fatalf("thenStatement = %v", thenNode)
	}
	elseNode := ifNode.FindChild(ElseStatement)
	if elseNode == nil || elseNode.Kind() != ExpressionStatement {
		t.Fatalf("elseStatement = %v", elseNode)
	}
}

// TestBuild_DeclaratorChain covers `int a, *b = nullptr;`: two declarators
// sharing one SimpleDeclaration, the second carrying an initializer.
func TestBuild_DeclaratorChain(t *testing.T) {
	// int(0) a(1) ,(2) *(3) b(4) =(5) nullptr(6) ;(7)
	tokens := []Token{
		tok(0, TokIdentifier, "int"),
		tok(1, TokIdentifier, "a"),
		tok(2, TokComma, ","),
		tok(3, TokStar, "*"),
		tok(4, TokIdentifier, "b"),
		tok(5, TokEqual, "="),
		tok(6, TokIdentifier, "nullptr"),
		tok(7, TokSemi, ";"),
	}
	declA := &SimpleDeclDecl{
		Type:          &TypeLoc{Kind: TLOther, End: InvalidLocation},
		NameLoc:       1,
		ChainBeginLoc: 0,
	}
	nullptrExpr := &IdExpr{Name: "nullptr", NameLoc: 6, TemplateKeywordLoc: InvalidLocation, Range: SourceRange{6, 6}}
	declB := &SimpleDeclDecl{
		Type:          &TypeLoc{Kind: TLPointer, LocalBegin: 3, End: 3},
		NameLoc:       4,
		ChainBeginLoc: 0,
		Init:          &Initializer{Range: SourceRange{5, 6}, Expr: nullptrExpr},
	}
	declA.NextInChain = declB

	tu := &TranslationUnitDecl{Decls: []Decl{declA}}
	tree, err := Build(NewArena(len(tokens)), tu, tokens)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	checkInvariants(t, tree.Root(), 8)

	simpleDecl := tree.Root().Children()[0]
	if simpleDecl.Kind() != SimpleDeclaration {
		t.Fatalf("kind = %v, want SimpleDeclaration", simpleDecl.Kind())
	}
	var declarators []*Node
	for _, c := range simpleDecl.Children() {
		if c.Role() == SimpleDeclarationDeclarator {
			declarators = append(declarators, c)
		}
	}
	if len(declarators) != 2 {
		t.Fatalf("found %d SimpleDeclarationDeclarator children, want 2", len(declarators))
	}
	last := declarators[1]
	if last.FindChild(DeclaratorInitializer) == nil {
		t.Fatal("second declarator missing DeclaratorInitializer role")
	}

	if nodeForA := tree.NodeForDecl(declA); nodeForA == nil || nodeForA.Kind() != SimpleDeclarator {
		t.Fatalf("NodeForDecl(declA) = %v", nodeForA)
	}
}

// TestBuild_TranslationUnitViaEntryPoint smoke-tests the public Build entry
// point end to end with a trivial single-declaration translation unit.
func TestBuild_TranslationUnitViaEntryPoint(t *testing.T) {
	tokens := []Token{
		tok(0, TokIdentifier, "int"),
		tok(1, TokIdentifier, "x"),
		tok(2, TokSemi, ";"),
	}
	tu := &TranslationUnitDecl{Decls: []Decl{&SimpleDeclDecl{
		Type: &TypeLoc{Kind: TLOther, End: InvalidLocation}, NameLoc: 1, ChainBeginLoc: 0,
	}}}
	tree, err := Build(NewArena(0), tu, tokens)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.Root().Kind() != TranslationUnit {
		t.Fatalf("root kind = %v", tree.Root().Kind())
	}
}

// TestBuild_PostfixIncrementSkipsPlaceholder covers `a++` lowered as an
// overloaded operator call carrying a synthetic second argument at an
// invalid location.
func TestBuild_PostfixIncrementSkipsPlaceholder(t *testing.T) {
	tokens := []Token{
		tok(0, TokIdentifier, "a"),
		tok(1, TokPlusPlus, "++"),
	}
	a := &IdExpr{Name: "a", NameLoc: 0, TemplateKeywordLoc: InvalidLocation, Range: SourceRange{0, 0}}
	call := &OperatorCallExpr{
		Op: OpPlusPlus, OperatorLoc: 1,
		Args:  []Expr{a, &PlaceholderArg{}},
		Range: SourceRange{0, 1},
	}
	b1, _ := newTestBuilder(tokens)
	node := b1.buildExpr(call)
	if node.Kind() != PostfixUnaryOperatorExpression {
		t.Fatalf("kind = %v, want PostfixUnaryOperatorExpression", node.Kind())
	}
	if node.FindChild(Operand) == nil {
		t.Fatal("missing operand role")
	}
	if len(node.Children()) != 2 {
		t.Fatalf("expected exactly 2 children (operand, operator token), got %d", len(node.Children()))
	}
}

// TestBuild_UnnamedParameterDoesNotPanic covers `void foo(int);`: the
// unnamed parameter's declarator contributes no type prefix, name, or
// initializer, so declaratorRange reports an empty range and the fold must
// be skipped rather than treated as a builder precondition failure.
func TestBuild_UnnamedParameterDoesNotPanic(t *testing.T) {
	// void(0) foo(1) ((2) int(3) )(4) ;(5)
	tokens := []Token{
		tok(0, TokIdentifier, "void"),
		tok(1, TokIdentifier, "foo"),
		tok(2, TokLParen, "("),
		tok(3, TokIdentifier, "int"),
		tok(4, TokRParen, ")"),
		tok(5, TokSemi, ";"),
	}
	unnamedParam := &SimpleDeclDecl{
		Type:          &TypeLoc{Kind: TLOther, Inner: nil, End: 3},
		NameLoc:       InvalidLocation,
		ChainBeginLoc: InvalidLocation,
	}
	decl := &SimpleDeclDecl{
		Type:    &TypeLoc{Kind: TLOther, End: InvalidLocation},
		NameLoc: 1, ChainBeginLoc: 0,
		Params: &ParametersAndQualifiers{
			LParenLoc:  2,
			RParenLoc:  4,
			EndLoc:     4,
			Parameters: []*SimpleDeclDecl{unnamedParam},
		},
	}
	tu := &TranslationUnitDecl{Decls: []Decl{decl}}
	tree, err := Build(NewArena(len(tokens)), tu, tokens)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if findRole(tree.Root(), ParametersAndQualifiersParameter) != nil {
		t.Fatal("expected no ParametersAndQualifiersParameter node for an unnamed parameter")
	}
}

// findRole searches n's subtree for the first node holding role r.
func findRole(n *Node, r Role) *Node {
	if n == nil {
		return nil
	}
	if n.Role() == r {
		return n
	}
	for _, c := range n.Children() {
		if found := findRole(c, r); found != nil {
			return found
		}
	}
	return nil
}

// TestBuild_UserDefinedLiteralKind checks that buildUserDefinedLiteral
// chooses its NodeKind from the literal's own semantic kind instead of
// folding every user-defined literal into a single kind.
func TestBuild_UserDefinedLiteralKind(t *testing.T) {
	tokens := []Token{tok(0, TokUserDefinedLiteral, "5_km")}
	udl := &UserDefinedLiteral{Kind: LitInteger, UDLKind: UDLPlain, SpelledText: "5_km", Loc: 0, Range: SourceRange{0, 0}}
	b, _ := newTestBuilder(tokens)
	node := b.buildExpr(udl)
	if node.Kind() != IntegerUserDefinedLiteralExpression {
		t.Fatalf("kind = %v, want IntegerUserDefinedLiteralExpression", node.Kind())
	}
}
