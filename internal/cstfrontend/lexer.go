// Package cstfrontend stands in for the lexer/preprocessor and semantic
// analyzer that would normally sit in front of a syntax-tree builder: it
// turns real C++-subset source text into the expanded token stream and
// typed AST that internal/cst.Build consumes. Nothing here is part of the
// tree-building algorithm itself; it exists so that algorithm has real
// inputs inside the cx CLI.
package cstfrontend

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anthropics/cx/internal/cst"
)

// Lexer scans a C++-subset source buffer into cst.Tokens, one rune at a
// time, in the style of a hand-written recursive scanner rather than a
// generated one — the same shape internal/parser wraps tree-sitter's own
// generated scanners in, just spelled out by hand for the grammar subset
// this frontend actually needs to feed the core builder.
type Lexer struct {
	src    string
	pos    int // byte offset of the next unread rune
	tokens []cst.Token
	// starts/ends record each emitted token's byte span in src, parallel to
	// tokens; translate.go uses them to map a tree-sitter node's byte range
	// back to the cst.Location the same span got when this Lexer produced
	// the expanded token stream it hands to internal/cst alongside the AST.
	starts []int
	ends   []int
}

// NewLexer creates a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// LexError reports a scanning failure at a byte offset.
type LexError struct {
	Offset  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("cstfrontend: lex error at byte %d: %s", e.Offset, e.Message)
}

var keywords = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "return": true,
	"break": true, "continue": true, "switch": true, "case": true, "default": true,
	"struct": true, "class": true, "union": true, "enum": true, "namespace": true,
	"template": true, "typename": true, "extern": true, "auto": true, "nullptr": true,
	"const": true, "volatile": true, "static": true, "inline": true, "virtual": true,
	"public": true, "private": true, "protected": true, "operator": true, "decltype": true,
	"new": true, "delete": true, "sizeof": true, "true": true, "false": true, "this": true,
	"__super": true, "co_await": true,
}

// keywordTokenKind maps a keyword spelling to the matching cst.TokenKind.
// Keywords with no dedicated TokenKind (const, virtual, typename, ...) still
// lex as themselves via TokIdentifier and are only distinguished by
// translate.go's spelling checks, since the core builder never role-assigns
// them directly.
var keywordTokenKind = map[string]cst.TokenKind{
	"if": cst.TokKwIf, "else": cst.TokKwElse, "while": cst.TokKwWhile, "for": cst.TokKwFor,
	"return": cst.TokKwReturn, "break": cst.TokKwBreak, "continue": cst.TokKwContinue,
	"switch": cst.TokKwSwitch, "case": cst.TokKwCase, "default": cst.TokKwDefault,
	"struct": cst.TokKwStruct, "class": cst.TokKwClass, "union": cst.TokKwUnion, "enum": cst.TokKwEnum,
	"namespace": cst.TokKwNamespace, "template": cst.TokKwTemplate, "extern": cst.TokKwExtern,
	"auto": cst.TokKwAuto, "new": cst.TokKwNew, "delete": cst.TokKwDelete,
	"co_await": cst.TokKwCoAwait, "operator": cst.TokKwOperator,
}

// Tokens runs the scanner to completion and returns the expanded token
// stream, including a trailing EOF sentinel.
func (l *Lexer) Tokens() ([]cst.Token, error) {
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			break
		}
		start := l.pos
		before := len(l.tokens)
		if err := l.lexOne(); err != nil {
			return nil, err
		}
		if len(l.tokens) > before {
			l.starts = append(l.starts, start)
			l.ends = append(l.ends, l.pos)
		}
	}
	eofPos := l.pos
	l.emit(cst.TokEOF, "")
	l.starts = append(l.starts, eofPos)
	l.ends = append(l.ends, eofPos)
	return l.tokens, nil
}

func (l *Lexer) emit(kind cst.TokenKind, text string) {
	idx := len(l.tokens)
	l.tokens = append(l.tokens, cst.NewToken(idx, kind, text, true))
}

// skipTrivia consumes whitespace, line comments, and block comments; none
// of them become tokens.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case unicode.IsSpace(r):
			l.pos += size
		case strings.HasPrefix(l.src[l.pos:], "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.src)
				return
			}
			l.pos += 2 + end + 2
		default:
			return
		}
	}
}

func (l *Lexer) lexOne() error {
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	switch {
	case unicode.IsLetter(r) || r == '_':
		return l.lexIdentifierOrKeyword()
	case unicode.IsDigit(r):
		return l.lexNumber()
	case r == '"':
		return l.lexStringLiteral()
	case r == '\'':
		return l.lexCharLiteral()
	default:
		return l.lexPunctuation(r)
	}
}

func (l *Lexer) lexIdentifierOrKeyword() error {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.pos += size
	}
	text := l.src[start:l.pos]
	if kind, ok := keywordTokenKind[text]; ok {
		l.emit(kind, text)
		return nil
	}
	l.emit(cst.TokIdentifier, text)
	return nil
}

// lexNumber scans an integer or floating literal, plus any user-defined
// literal suffix (e.g. `5_km`, `3.0_deg`), as one token: TokFloatLiteral if
// the spelling contains a `.`, TokIntLiteral otherwise. The AST literal
// kind and the UDL-vs-plain-literal split are left to translate.go, which
// has the surrounding AST context to build the right node.
func (l *Lexer) lexNumber() error {
	start := l.pos
	sawDot := false
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case unicode.IsDigit(r):
			l.pos += size
		case r == '.' && !sawDot:
			sawDot = true
			l.pos += size
		case unicode.IsLetter(r) || r == '_':
			// Suffix: integer suffix (u/l/ull/...) or a user-defined literal
			// identifier; either way it's part of this token's spelling.
			l.pos += size
		default:
			goto done
		}
	}
done:
	text := l.src[start:l.pos]
	if sawDot {
		l.emit(cst.TokFloatLiteral, text)
	} else {
		l.emit(cst.TokIntLiteral, text)
	}
	return nil
}

func (l *Lexer) lexStringLiteral() error {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '"':
			l.pos++
			l.pos = consumeUDLSuffix(l.src, l.pos)
			l.emit(cst.TokStringLiteral, l.src[start:l.pos])
			return nil
		default:
			l.pos++
		}
	}
	return &LexError{Offset: start, Message: "unterminated string literal"}
}

func (l *Lexer) lexCharLiteral() error {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\'':
			l.pos++
			l.pos = consumeUDLSuffix(l.src, l.pos)
			l.emit(cst.TokCharLiteral, l.src[start:l.pos])
			return nil
		default:
			l.pos++
		}
	}
	return &LexError{Offset: start, Message: "unterminated character literal"}
}

// consumeUDLSuffix advances past a trailing user-defined-literal suffix
// (an identifier immediately following the closing quote, no whitespace).
func consumeUDLSuffix(src string, pos int) int {
	for pos < len(src) {
		r, size := utf8.DecodeRuneInString(src[pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		pos += size
	}
	return pos
}

// punctTable is checked longest-match-first so `<<=` is not mis-scanned as
// `<<` followed by `=`.
var punctTable = []struct {
	text string
	kind cst.TokenKind
}{
	{"<<=", cst.TokLessLessEqual}, {">>=", cst.TokGreaterGreaterEqual},
	{"->*", cst.TokArrowStar}, {"<=>", cst.TokSpaceship},
	{"::", cst.TokColonColon}, {"->", cst.TokArrow},
	{"++", cst.TokPlusPlus}, {"--", cst.TokMinusMinus},
	{"&&", cst.TokAmpAmp}, {"||", cst.TokPipePipe},
	{"==", cst.TokEqualEqual}, {"!=", cst.TokExclaimEqual},
	{"<=", cst.TokLessEqual}, {">=", cst.TokGreaterEqual},
	{"<<", cst.TokLessLess}, {">>", cst.TokGreaterGreater},
	{"+=", cst.TokPlusEqual}, {"-=", cst.TokMinusEqual},
	{"*=", cst.TokStarEqual}, {"/=", cst.TokSlashEqual},
	{"%=", cst.TokPercentEqual}, {"^=", cst.TokCaretEqual},
	{"|=", cst.TokPipeEqual}, {"&=", cst.TokAmpEqual},
	{"(", cst.TokLParen}, {")", cst.TokRParen},
	{"{", cst.TokLBrace}, {"}", cst.TokRBrace},
	{"[", cst.TokLBracket}, {"]", cst.TokRBracket},
	{";", cst.TokSemi}, {",", cst.TokComma}, {":", cst.TokColon},
	{".", cst.TokDot}, {"&", cst.TokAmp},
	{"*", cst.TokStar}, {"+", cst.TokPlus},
	{"-", cst.TokMinus}, {"~", cst.TokTilde},
	{"!", cst.TokExclaim}, {"/", cst.TokSlash},
	{"%", cst.TokPercent}, {"^", cst.TokCaret},
	{"|", cst.TokPipe}, {"=", cst.TokEqual},
	{"<", cst.TokLess}, {">", cst.TokGreater},
}

func (l *Lexer) lexPunctuation(r rune) error {
	rest := l.src[l.pos:]
	for _, p := range punctTable {
		if strings.HasPrefix(rest, p.text) {
			l.pos += len(p.text)
			l.emit(p.kind, p.text)
			return nil
		}
	}
	return &LexError{Offset: l.pos, Message: fmt.Sprintf("unexpected character %q", r)}
}
