package cst

// Range Computers: five pure functions, each deriving a SourceRange for
// one AST shape from data already on the node plus token-kind lookups
// (never by touching the pending forest). Grounded
// on the original's GetStartLoc / getDeclaratorRange / getDeclarationRange
// / getStmtRange / getExprRange / getTemplateRange family.

// getStartLoc walks a declarator's inside-out type-location spine and
// returns the first location that is part of the declarator's own written
// prefix, or InvalidLocation if the type contributes nothing before the
// name.
func getStartLoc(t *TypeLoc) Location {
	if t == nil {
		return InvalidLocation
	}
	switch t.Kind {
	case TLParen:
		if loc := getStartLoc(t.Inner); loc.IsValid() {
			return loc
		}
		return t.LocalBegin
	case TLPointer, TLReference, TLBlockPointer, TLMemberPointer:
		if loc := getStartLoc(t.Inner); loc.IsValid() {
			return loc
		}
		return t.LocalBegin
	case TLFunctionProto:
		if t.HasTrailingReturn {
			// Stop before the suffix: the trailing-return type is handled
			// separately and is not part of this declarator's prefix.
			return InvalidLocation
		}
		return getStartLoc(t.Inner)
	default: // TLOther: transparent passthrough
		return getStartLoc(t.Inner)
	}
}

// declaratorRange computes a declarator's SourceRange from its type
// prefix, name, and optional initializer.
// ok is false when the declarator contributes nothing (empty range,
// suppress the fold).
func declaratorRange(t *TypeLoc, nameLoc Location, init *Initializer) (SourceRange, bool) {
	start := getStartLoc(t)
	var end Location = InvalidLocation
	if t != nil {
		end = t.End
	}
	if nameLoc.IsValid() {
		if !start.IsValid() {
			start = nameLoc
		}
		if !end.IsValid() || end < nameLoc {
			end = nameLoc
		}
	}
	if init != nil {
		end = init.Range.End
	}
	if !start.IsValid() {
		return SourceRange{}, false
	}
	return SourceRange{Begin: start, End: end}, true
}

// tokenKindAt is a small helper shared by the semicolon rules below.
func tokenKindAt(idx *TokenIndex, loc Location) (TokenKind, bool) {
	tok := idx.Find(loc)
	if tok == nil {
		return 0, false
	}
	return tok.TokenKind(), true
}

// maybeAppendSemicolon extends base by one token if the very next token in
// the stream is a semicolon that belongs to this declaration/statement,
// unless skip is true.
func maybeAppendSemicolon(idx *TokenIndex, base SourceRange, skip bool) SourceRange {
	if skip {
		return base
	}
	if k, ok := tokenKindAt(idx, base.End); ok && k == TokSemi {
		return base // already ends on the semicolon itself
	}
	next := base.End + 1
	if k, ok := tokenKindAt(idx, next); ok && k == TokSemi {
		return SourceRange{Begin: base.Begin, End: next}
	}
	return base
}

// declarationRange computes a SimpleDeclaration/TagDecl's own range: start
// is overridden to tagBegin when this is a tag decl; the trailing semicolon is
// appended unless isNamespace or noSemicolon (rule 2).
func declarationRange(idx *TokenIndex, base SourceRange, tagBegin Location, isNamespace, noSemicolon bool) SourceRange {
	if tagBegin.IsValid() {
		base.Begin = tagBegin
	}
	return maybeAppendSemicolon(idx, base, isNamespace || noSemicolon)
}

// statementRange computes a statement's own range: compound statements
// (and any statement that already ends on `;`) are returned as-is;
// otherwise the trailing semicolon is folded in if present.
func statementRange(idx *TokenIndex, base SourceRange, isCompound bool) SourceRange {
	if isCompound {
		return base
	}
	return maybeAppendSemicolon(idx, base, false)
}

// exprRange returns e's own range unchanged: expressions never own a
// trailing semicolon (that belongs to the enclosing ExpressionStatement).
func exprRange(r SourceRange) SourceRange { return r }

// templateRange computes a TemplateDecl/ExplicitInstantiationDecl's range:
// from the `template`/`extern` introducer through the wrapped declaration's
// own (already-computed) end, with no semicolon handling of its own — the
// wrapped declaration is responsible for its own trailing semicolon, except
// that explicit instantiations and template declarations of a tag type
// follow the same rule 1/2 shape as any other declaration.
func templateRange(introducerLoc Location, inner SourceRange) SourceRange {
	begin := introducerLoc
	if !begin.IsValid() {
		begin = inner.Begin
	}
	return SourceRange{Begin: begin, End: inner.End}
}
