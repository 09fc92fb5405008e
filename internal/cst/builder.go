package cst

import "fmt"

// Builder is the Traversal Driver: a
// post-order walk over the AST contract that folds the pending forest into
// a Tree, one handler per AST node kind, dispatched by a type switch
// instead of virtual dispatch.
type Builder struct {
	arena  *Arena
	tokens *TokenIndex
	forest *pendingForest
	astMap *astToCSTMap
}

// Build lowers tu, whose expanded token stream is tokens, into a Tree.
// Panics raised by the core (InternalError, UnsupportedError) are recovered
// here and returned as errors: Build is the boundary where an internal
// invariant violation stops being a panic and becomes a caller-visible
// error.
func Build(arena *Arena, tu *TranslationUnitDecl, tokens []Token) (tree *Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			tree = nil
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("cst: build panic: %v", r)
			}
		}
	}()

	owned := make([]Token, len(tokens))
	copy(owned, tokens)
	tokPtrs := make([]*Token, len(owned))
	for i := range owned {
		tokPtrs[i] = &owned[i]
	}

	b := &Builder{
		arena:  arena,
		tokens: NewTokenIndex(tokPtrs),
		forest: newPendingForest(tokPtrs, arena),
		astMap: newASTToCSTMap(),
	}

	for _, d := range tu.Decls {
		b.buildTopLevelDecl(d)
	}

	root := b.arena.newTree(TranslationUnit)
	first, last := b.tuRange(tokPtrs)
	b.forest.foldChildren(first, last, root)

	return &Tree{root: b.forest.finalize(), astMap: b.astMap}, nil
}

// tuRange spans every non-EOF token; it panics with an InternalError if
// there are none.
func (b *Builder) tuRange(tokPtrs []*Token) (Location, Location) {
	first := InvalidLocation
	last := InvalidLocation
	for _, t := range tokPtrs {
		if t.TokenKind() == TokEOF {
			continue
		}
		if !first.IsValid() {
			first = t.Loc()
		}
		last = t.Loc()
	}
	if !first.IsValid() {
		panic(newInternalError("Build: token stream has no non-EOF tokens"))
	}
	return first, last
}

// fold allocates a Tree node of kind and folds the pending entries covering
// rng into it (a thin wrapper shared by every handler below).
func (b *Builder) fold(rng SourceRange, kind NodeKind) *Node {
	n := b.arena.newTree(kind)
	b.forest.foldChildren(rng.Begin, rng.End, n)
	return n
}

func (b *Builder) role(loc Location, r Role) {
	b.forest.assignRole(loc, loc, r)
}

func (b *Builder) roleRange(n *Node, r Role) {
	b.forest.assignRole(n.FirstToken(), n.LastToken(), r)
}

// ---- Declarations ----

// buildTopLevelDecl processes one member of a TranslationUnit or
// CompoundStmt's declaration list. A chain's later declarators are reached
// exclusively via SimpleDeclDecl.NextInChain, never listed separately by
// the parent, so a SimpleDeclDecl here is always a chain's first member.
func (b *Builder) buildTopLevelDecl(d Decl) {
	switch v := d.(type) {
	case *SimpleDeclDecl:
		b.buildDeclChain(v)
	default:
		b.buildDecl(d)
	}
}

// buildDecl dispatches a declaration that owns its own single wrapper node:
// a namespace, tag, template wrapper, or explicit instantiation. A
// SimpleDeclDecl reaches here only as a template/explicit-instantiation's
// wrapped inner declaration, where it is always alone in its chain.
func (b *Builder) buildDecl(d Decl) *Node {
	switch v := d.(type) {
	case *NamespaceDecl:
		node := b.buildNamespaceDecl(v)
		b.astMap.add(declKey(d), node)
		return node
	case *TagDecl:
		node := b.buildTagDecl(v)
		b.astMap.add(declKey(d), node)
		return node
	case *TemplateDecl:
		node := b.buildTemplateDecl(v)
		b.astMap.add(declKey(d), node)
		return node
	case *ExplicitInstantiationDecl:
		node := b.buildExplicitInstantiationDecl(v)
		b.astMap.add(declKey(d), node)
		return node
	case *SimpleDeclDecl:
		return b.buildDeclChain(v)
	default:
		panic(newInternalError("buildDecl: unhandled declaration kind %T", d))
	}
}

// buildDeclChain walks an entire comma-chain (`int a, *b = x;`) starting at
// d, folding each declarator's own SimpleDeclarator subtree in turn and
// finally folding the enclosing SimpleDeclaration wrapper once the chain's
// last declarator is reached.
func (b *Builder) buildDeclChain(d *SimpleDeclDecl) *Node {
	cur := d
	end := d.ChainBeginLoc
	for {
		declNode := b.buildDeclarator(cur)
		if declNode != nil {
			b.roleRange(declNode, SimpleDeclarationDeclarator)
			b.astMap.add(declKey(cur), declNode)
			end = declNode.LastToken()
		}
		if cur.FunctionBody != nil {
			// A function definition's declaration ends at the body's `}`.
			end = cur.FunctionBody.RBraceLoc
		}

		if cur.NextInChain == nil {
			rng := declarationRange(b.tokens, SourceRange{d.ChainBeginLoc, end}, InvalidLocation, false, cur.NoSemicolon)
			return b.fold(rng, SimpleDeclaration)
		}
		cur = cur.NextInChain
	}
}

// buildDeclarator folds a single declarator's own SimpleDeclarator subtree,
// including any function parameter list, trailing return type, and
// initializer. It never touches SimpleDeclarationDeclarator role
// assignment or the enclosing chain — buildDeclChain does that.
func (b *Builder) buildDeclarator(d *SimpleDeclDecl) *Node {
	if d.NameLoc.IsValid() {
		b.role(d.NameLoc, DeclaratorName)
	}

	var paramsNode *Node
	if d.Params != nil {
		paramsNode = b.buildParametersAndQualifiers(d.Params, d.TrailingReturn)
	}

	if d.FunctionBody != nil {
		b.buildStmt(d.FunctionBody)
	}

	var initNode *Node
	if d.Init != nil && d.Init.Expr != nil {
		initNode = b.buildExpr(d.Init.Expr)
		b.roleRange(initNode, DeclaratorInitializer)
	}

	rng, ok := declaratorRange(d.Type, d.NameLoc, d.Init)
	if !ok {
		// An unnamed parameter (`void foo(int);`) contributes no type
		// prefix, name, or initializer of its own: nothing to fold.
		return nil
	}
	if paramsNode != nil && paramsNode.LastToken() > rng.End {
		rng.End = paramsNode.LastToken()
	}
	return b.fold(rng, SimpleDeclarator)
}

func (b *Builder) buildParametersAndQualifiers(p *ParametersAndQualifiers, trailing *TrailingReturn) *Node {
	var trailingNode *Node
	if trailing != nil {
		trailingNode = b.buildTrailingReturn(trailing)
		b.roleRange(trailingNode, ParametersAndQualifiersTrailingReturn)
	}

	for _, param := range p.Parameters {
		paramNode := b.buildDeclarator(param)
		if paramNode != nil {
			b.roleRange(paramNode, ParametersAndQualifiersParameter)
		}
	}

	b.role(p.LParenLoc, OpenParen)
	if p.RParenLoc.IsValid() {
		b.role(p.RParenLoc, CloseParen)
	}

	end := p.EndLoc
	if trailingNode != nil && trailingNode.LastToken() > end {
		end = trailingNode.LastToken()
	}
	return b.fold(SourceRange{p.LParenLoc, end}, ParametersAndQualifiersNode)
}

func (b *Builder) buildTrailingReturn(t *TrailingReturn) *Node {
	b.role(t.ArrowLoc, ArrowToken)
	end := t.Range.End
	if t.ReturnType != nil {
		if loc := getStartLoc(t.ReturnType); loc.IsValid() && t.ReturnType.End.IsValid() {
			end = t.ReturnType.End
		}
	}
	node := b.fold(SourceRange{t.ArrowLoc, end}, TrailingReturnTypeNode)
	return node
}

func (b *Builder) buildNamespaceDecl(d *NamespaceDecl) *Node {
	if d.Inner != nil {
		b.buildNamespaceDecl(d.Inner)
	} else {
		for _, child := range d.Body {
			b.buildTopLevelDecl(child)
		}
	}

	// Nested-namespace sugar (`namespace a::b {}`): an inner component's
	// range begins with the `::` that precedes its name; its own fold is
	// suppressed and its span is picked up by the outer fold instead.
	if k, ok := tokenKindAt(b.tokens, d.Range.Begin); ok && k == TokColonColon {
		return nil
	}

	if d.KeywordLoc.IsValid() {
		b.role(d.KeywordLoc, IntroducerKeyword)
	}
	rng := declarationRange(b.tokens, d.Range, InvalidLocation, true, false)
	return b.fold(rng, NamespaceDefinition)
}

func (b *Builder) buildTagDecl(d *TagDecl) *Node {
	for _, child := range d.Body {
		b.buildTopLevelDecl(child)
	}
	b.role(d.TagBeginLoc, IntroducerKeyword)
	rng := declarationRange(b.tokens, d.Range, d.TagBeginLoc, false, d.NoSemicolon)
	return b.fold(rng, TagDefinition)
}

func (b *Builder) buildTemplateDecl(d *TemplateDecl) *Node {
	inner := b.buildDecl(d.Inner)
	b.roleRange(inner, TemplateDeclarationDeclaration)
	rng := templateRange(d.TemplateKeywordLoc, SourceRange{inner.FirstToken(), inner.LastToken()})
	return b.fold(rng, TemplateDeclaration)
}

func (b *Builder) buildExplicitInstantiationDecl(d *ExplicitInstantiationDecl) *Node {
	inner := b.buildDecl(d.Inner)
	b.roleRange(inner, ExplicitTemplateInstantiationDeclaration)
	if d.ExternLoc.IsValid() {
		b.role(d.ExternLoc, ExternKeyword)
	}
	introducer := d.TemplateKeywordLoc
	if d.ExternLoc.IsValid() {
		introducer = d.ExternLoc
	}
	rng := templateRange(introducer, SourceRange{inner.FirstToken(), inner.LastToken()})
	return b.fold(rng, ExplicitTemplateInstantiation)
}

// ---- Statements ----

func (b *Builder) buildDeclInStmt(ds *DeclStmt) {
	switch v := ds.D.(type) {
	case *SimpleDeclDecl:
		b.buildDeclChain(v)
	default:
		b.buildDecl(ds.D)
	}
}

func (b *Builder) buildStmt(s Stmt) *Node {
	var node *Node
	switch v := s.(type) {
	case *ExprAsStmt:
		inner := b.buildExpr(v.E)
		rng := statementRange(b.tokens, SourceRange{inner.FirstToken(), inner.LastToken()}, false)
		node = b.fold(rng, ExpressionStatement)
	case *DeclStmt:
		b.buildDeclInStmt(v)
		rng := statementRange(b.tokens, v.Range, false)
		node = b.fold(rng, DeclarationStatement)
	case *CompoundStmt:
		node = b.buildCompoundStmt(v)
	case *IfStmt:
		node = b.buildIfStmt(v)
	case *WhileStmt:
		node = b.buildWhileStmt(v)
	case *ForStmt:
		node = b.buildForStmt(v)
	case *RangeForStmt:
		node = b.buildRangeForStmt(v)
	case *SwitchStmt:
		node = b.buildSwitchStmt(v)
	case *CaseStmt:
		node = b.buildCaseStmt(v)
	case *DefaultStmt:
		node = b.buildDefaultStmt(v)
	case *ReturnStmt:
		node = b.buildReturnStmt(v)
	case *BreakStmt:
		b.role(v.BreakLoc, IntroducerKeyword)
		rng := statementRange(b.tokens, SourceRange{v.BreakLoc, v.BreakLoc}, false)
		node = b.fold(rng, BreakStatement)
	case *ContinueStmt:
		b.role(v.ContinueLoc, IntroducerKeyword)
		rng := statementRange(b.tokens, SourceRange{v.ContinueLoc, v.ContinueLoc}, false)
		node = b.fold(rng, ContinueStatement)
	default:
		panic(newInternalError("buildStmt: unhandled statement kind %T", s))
	}
	b.astMap.add(stmtKey(s), node)
	return node
}

func (b *Builder) buildCompoundStmt(s *CompoundStmt) *Node {
	for _, child := range s.Body {
		n := b.buildStmt(child)
		b.roleRange(n, CompoundStatementStatement)
	}
	rng := statementRange(b.tokens, SourceRange{s.LBraceLoc, s.RBraceLoc}, true)
	return b.fold(rng, CompoundStatement)
}

func (b *Builder) buildIfStmt(s *IfStmt) *Node {
	b.role(s.IfLoc, IntroducerKeyword)
	if s.Init != nil {
		n := b.buildStmt(s.Init)
		b.roleRange(n, InitStatement)
	}
	cond := b.buildExpr(s.Cond)
	b.roleRange(cond, Condition)
	then := b.buildStmt(s.Then)
	b.roleRange(then, ThenStatement)
	last := then.LastToken()
	if s.Else != nil {
		b.role(s.ElseLoc, ElseKeyword)
		elseNode := b.buildStmt(s.Else)
		b.roleRange(elseNode, ElseStatement)
		last = elseNode.LastToken()
	}
	return b.fold(SourceRange{s.IfLoc, last}, IfStatement)
}

func (b *Builder) buildWhileStmt(s *WhileStmt) *Node {
	b.role(s.WhileLoc, IntroducerKeyword)
	cond := b.buildExpr(s.Cond)
	b.roleRange(cond, Condition)
	body := b.buildStmt(s.Body)
	b.roleRange(body, BodyStatement)
	return b.fold(SourceRange{s.WhileLoc, body.LastToken()}, WhileStatement)
}

func (b *Builder) buildForStmt(s *ForStmt) *Node {
	b.role(s.ForLoc, IntroducerKeyword)
	if s.Init != nil {
		n := b.buildStmt(s.Init)
		b.roleRange(n, InitStatement)
	}
	if s.Cond != nil {
		n := b.buildExpr(s.Cond)
		b.roleRange(n, Condition)
	}
	if s.Inc != nil {
		b.buildExpr(s.Inc)
	}
	body := b.buildStmt(s.Body)
	b.roleRange(body, BodyStatement)
	return b.fold(SourceRange{s.ForLoc, body.LastToken()}, ForStatement)
}

// buildRangeForStmt visits its parts in a fixed order — init, loop
// variable, range expression, body — rather than relying on generic child
// discovery, since the AST's natural shape does not line up with the CST
// roles one-to-one.
func (b *Builder) buildRangeForStmt(s *RangeForStmt) *Node {
	b.role(s.ForLoc, IntroducerKeyword)
	if s.Init != nil {
		n := b.buildStmt(s.Init)
		b.roleRange(n, InitStatement)
	}
	loopVar := b.buildDeclarator(s.LoopVar)
	if loopVar != nil {
		b.roleRange(loopVar, LoopVariable)
	}
	rangeExpr := b.buildExpr(s.RangeExp)
	b.roleRange(rangeExpr, RangeExpression)
	body := b.buildStmt(s.Body)
	b.roleRange(body, BodyStatement)
	return b.fold(SourceRange{s.ForLoc, body.LastToken()}, RangeForStatement)
}

func (b *Builder) buildSwitchStmt(s *SwitchStmt) *Node {
	b.role(s.SwitchLoc, IntroducerKeyword)
	cond := b.buildExpr(s.Cond)
	b.roleRange(cond, Condition)
	body := b.buildStmt(s.Body)
	b.roleRange(body, BodyStatement)
	return b.fold(SourceRange{s.SwitchLoc, body.LastToken()}, SwitchStatement)
}

func (b *Builder) buildCaseStmt(s *CaseStmt) *Node {
	b.role(s.CaseLoc, IntroducerKeyword)
	val := b.buildExpr(s.Value)
	b.roleRange(val, CaseValue)
	sub := b.buildStmt(s.Sub)
	b.roleRange(sub, BodyStatement)
	return b.fold(SourceRange{s.CaseLoc, sub.LastToken()}, CaseStatement)
}

func (b *Builder) buildDefaultStmt(s *DefaultStmt) *Node {
	b.role(s.DefaultLoc, IntroducerKeyword)
	sub := b.buildStmt(s.Sub)
	b.roleRange(sub, BodyStatement)
	return b.fold(SourceRange{s.DefaultLoc, sub.LastToken()}, DefaultStatement)
}

func (b *Builder) buildReturnStmt(s *ReturnStmt) *Node {
	b.role(s.ReturnLoc, IntroducerKeyword)
	end := s.ReturnLoc
	if s.Value != nil {
		v := b.buildExpr(s.Value)
		b.roleRange(v, ReturnValue)
		end = v.LastToken()
	}
	rng := statementRange(b.tokens, SourceRange{s.ReturnLoc, end}, false)
	return b.fold(rng, ReturnStatement)
}

// ---- Expressions ----

func (b *Builder) buildExpr(e Expr) *Node {
	switch v := e.(type) {
	case *IdExpr:
		return b.buildIdExpr(v)
	case *MemberExpr:
		return b.buildMemberExpr(v)
	case *OperatorCallExpr:
		return b.buildOperatorCallExpr(v)
	case *BinaryOperatorExpr:
		return b.buildBinaryOperatorExpr(v)
	case *UnaryOperatorExpr:
		return b.buildUnaryOperatorExpr(v)
	case *CallExpr:
		return b.buildCallExpr(v)
	case *Literal:
		return b.buildLiteral(v)
	case *UserDefinedLiteral:
		return b.buildUserDefinedLiteral(v)
	case *PlaceholderArg:
		panic(newInternalError("buildExpr: a placeholder argument must be skipped by its caller, not built"))
	default:
		panic(newInternalError("buildExpr: unhandled expression kind %T", e))
	}
}

func (b *Builder) buildIdExpr(e *IdExpr) *Node {
	var qualNode *Node
	if e.Qualifier != nil && len(e.Qualifier.Components) > 0 {
		qualNode = b.buildNestedNameSpecifier(e.Qualifier)
	}
	if e.NameLoc.IsValid() {
		b.role(e.NameLoc, IdExpressionID)
	}
	if e.TemplateKeywordLoc.IsValid() {
		b.role(e.TemplateKeywordLoc, IdExpressionTemplateKeyword)
	}
	if qualNode != nil {
		b.roleRange(qualNode, IdExpressionQualifier)
	}
	return b.fold(e.Range, IdExpression)
}

// buildNestedNameSpecifier folds a qualifier chain into a list shape:
// walking outermost to innermost, each component becomes its own specifier
// node marked List_element, and the `::` that follows it is marked
// List_delimiter.
func (b *Builder) buildNestedNameSpecifier(n *NestedNameSpecifierLoc) *Node {
	for _, c := range n.Components {
		var kind NodeKind
		switch c.Kind {
		case NNSGlobal:
			kind = GlobalNameSpecifier
		case NNSDecltype:
			kind = DecltypeNameSpecifier
		case NNSSimpleTemplate:
			kind = SimpleTemplateNameSpecifier
		case NNSIdentifier:
			kind = IdentifierNameSpecifier
		default:
			panic(newInternalError("buildNestedNameSpecifier: unhandled component kind %d", c.Kind))
		}
		comp := b.fold(c.Range, kind)
		b.roleRange(comp, ListElement)
		if c.ColonColonLoc.IsValid() {
			b.role(c.ColonColonLoc, ListDelimiter)
		}
	}
	whole := b.fold(n.Range, NestedNameSpecifier)
	b.astMap.add(nnsKey(n), whole)
	return whole
}

func (b *Builder) buildMemberExpr(e *MemberExpr) *Node {
	if e.Implicit {
		// No object or access token in the source: only the id-expression.
		return b.buildIdExpr(e.Member)
	}
	base := b.buildExpr(e.Base)
	b.roleRange(base, Object)
	if !e.Implicit {
		b.role(e.AccessLoc, AccessToken)
	}
	member := b.buildIdExpr(e.Member)
	b.roleRange(member, Member)
	return b.fold(e.Range, MemberExpression)
}

// buildOperatorCallExpr classifies e via the operator/argument-count table
// (operator.go) and assigns roles accordingly, skipping the synthetic
// placeholder argument that postfix ++/-- carries at an invalid source
// location.
func (b *Builder) buildOperatorCallExpr(e *OperatorCallExpr) *Node {
	var args []*Node
	for _, a := range e.Args {
		if _, isPlaceholder := a.(*PlaceholderArg); isPlaceholder {
			continue
		}
		args = append(args, b.buildExpr(a))
	}

	kind := classifyOperatorCall(e.Op, len(e.Args))
	switch kind {
	case BinaryOperatorExpression:
		if len(args) != 2 {
			panic(newInternalError("buildOperatorCallExpr: binary shape needs 2 arguments, got %d", len(args)))
		}
		b.roleRange(args[0], LeftHandSide)
		b.role(e.OperatorLoc, OperatorToken)
		b.roleRange(args[1], RightHandSide)
	case PrefixUnaryOperatorExpression:
		if len(args) != 1 {
			panic(newInternalError("buildOperatorCallExpr: prefix shape needs 1 argument, got %d", len(args)))
		}
		b.role(e.OperatorLoc, OperatorToken)
		b.roleRange(args[0], Operand)
	case PostfixUnaryOperatorExpression:
		if len(args) != 1 {
			panic(newInternalError("buildOperatorCallExpr: postfix shape needs 1 non-placeholder argument, got %d", len(args)))
		}
		b.roleRange(args[0], Operand)
		b.role(e.OperatorLoc, OperatorToken)
	case UnknownExpression:
		// No named roles: the fold below sweeps operator token and
		// arguments in as plain Unknown children.
	default:
		panic(newInternalError("buildOperatorCallExpr: unexpected classification %s", kind))
	}
	return b.fold(e.Range, kind)
}

func (b *Builder) buildBinaryOperatorExpr(e *BinaryOperatorExpr) *Node {
	lhs := b.buildExpr(e.LHS)
	b.roleRange(lhs, LeftHandSide)
	b.role(e.OpLoc, OperatorToken)
	rhs := b.buildExpr(e.RHS)
	b.roleRange(rhs, RightHandSide)
	return b.fold(e.Range, BinaryOperatorExpression)
}

func (b *Builder) buildUnaryOperatorExpr(e *UnaryOperatorExpr) *Node {
	kind := PrefixUnaryOperatorExpression
	if e.Postfix {
		kind = PostfixUnaryOperatorExpression
	}
	if e.Postfix {
		operand := b.buildExpr(e.Operand)
		b.roleRange(operand, Operand)
		b.role(e.OpLoc, OperatorToken)
	} else {
		b.role(e.OpLoc, OperatorToken)
		operand := b.buildExpr(e.Operand)
		b.roleRange(operand, Operand)
	}
	return b.fold(e.Range, kind)
}

// buildCallExpr folds an ordinary (non-operator) function call as Unknown:
// there is no dedicated role vocabulary for a plain call's callee/argument
// list, so it falls through the Unknown* fallback like any other construct
// without a dedicated handler.
func (b *Builder) buildCallExpr(e *CallExpr) *Node {
	b.buildExpr(e.Callee)
	for _, a := range e.Args {
		b.buildExpr(a)
	}
	return b.fold(e.Range, UnknownExpression)
}

func (b *Builder) buildLiteral(e *Literal) *Node {
	b.role(e.Loc, LiteralToken)
	var kind NodeKind
	switch e.LiteralKind {
	case LitInteger:
		kind = IntegerLiteralExpression
	case LitFloating:
		kind = FloatingLiteralExpression
	case LitCharacter:
		kind = CharacterLiteralExpression
	case LitString:
		kind = StringLiteralExpression
	default:
		panic(newInternalError("buildLiteral: unhandled literal kind %d", e.LiteralKind))
	}
	return b.fold(e.Range, kind)
}

func (b *Builder) buildUserDefinedLiteral(e *UserDefinedLiteral) *Node {
	b.role(e.Loc, LiteralToken)
	var kind NodeKind
	switch e.Kind {
	case LitInteger:
		kind = IntegerUserDefinedLiteralExpression
	case LitFloating:
		kind = FloatUserDefinedLiteralExpression
	case LitCharacter:
		kind = CharUserDefinedLiteralExpression
	case LitString:
		kind = StringUserDefinedLiteralExpression
	default:
		panic(newInternalError("buildUserDefinedLiteral: unhandled literal kind %d", e.Kind))
	}
	return b.fold(e.Range, kind)
}
