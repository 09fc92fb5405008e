// Package cst builds a lossless concrete syntax tree from a semantic AST and
// an expanded token stream, for a C++-like language.
package cst

import "fmt"

// TokenKind is the lexical category of a Token.
type TokenKind uint16

const (
	// TokEOF marks the sentinel end-of-file token. It is never itself part
	// of the returned tree.
	TokEOF TokenKind = iota
	TokIdentifier
	TokIntLiteral
	TokFloatLiteral
	TokCharLiteral
	TokStringLiteral
	TokUserDefinedLiteral

	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokSemi
	TokComma
	TokColon
	TokColonColon
	TokArrow
	TokDot
	TokAmp
	TokStar
	TokPlus
	TokMinus
	TokTilde
	TokExclaim
	TokSlash
	TokPercent
	TokCaret
	TokPipe
	TokLessLess
	TokGreaterGreater
	TokAmpAmp
	TokPipePipe
	TokEqual
	TokEqualEqual
	TokExclaimEqual
	TokLess
	TokGreater
	TokLessEqual
	TokGreaterEqual
	TokSpaceship
	TokPlusPlus
	TokMinusMinus
	TokPlusEqual
	TokMinusEqual
	TokStarEqual
	TokSlashEqual
	TokPercentEqual
	TokCaretEqual
	TokPipeEqual
	TokAmpEqual
	TokLessLessEqual
	TokGreaterGreaterEqual
	TokArrowStar

	TokKwIf
	TokKwElse
	TokKwWhile
	TokKwFor
	TokKwReturn
	TokKwBreak
	TokKwContinue
	TokKwSwitch
	TokKwCase
	TokKwDefault
	TokKwStruct
	TokKwClass
	TokKwUnion
	TokKwEnum
	TokKwNamespace
	TokKwTemplate
	TokKwExtern
	TokKwAuto
	TokKwNew
	TokKwDelete
	TokKwCoAwait
	TokKwOperator
)

// Location identifies the source offset a token starts at. It is opaque to
// callers beyond ordering: Location(a) < Location(b) iff a is before b in
// translation-unit order.
type Location int32

// InvalidLocation is the sentinel for "no location" (e.g. an anonymous
// declarator name).
const InvalidLocation Location = -1

// IsValid reports whether l names an actual token start.
func (l Location) IsValid() bool { return l >= 0 }

// Token is an opaque lexical record. Tokens are externally owned and
// immutable during tree construction.
type Token struct {
	kind TokenKind
	loc  Location
	text string
	// spelled reports whether this expanded token has a spelled-token
	// counterpart (false for tokens that originated purely in macro
	// expansion). It drives Node.CanModify.
	spelled bool
}

// NewToken constructs a Token. index is this token's position in the
// expanded-token array and doubles as its Location.
func NewToken(index int, kind TokenKind, text string, hasSpelled bool) Token {
	return Token{kind: kind, loc: Location(index), text: text, spelled: hasSpelled}
}

// TokenKindOf returns the token's lexical kind.
func (t Token) TokenKind() TokenKind { return t.kind }

// Loc returns the token's location (== its index in the expanded array).
func (t Token) Loc() Location { return t.loc }

// Text returns the token's spelled text.
func (t Token) Text() string { return t.text }

// HasSpelled reports whether the token has a spelled-token counterpart.
func (t Token) HasSpelled() bool { return t.spelled }

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", tokenKindNames[t.kind], t.text, t.loc)
}

var tokenKindNames = map[TokenKind]string{
	TokEOF: "EOF", TokIdentifier: "IDENT",
	TokIntLiteral: "INT_LITERAL", TokFloatLiteral: "FLOAT_LITERAL",
	TokCharLiteral: "CHAR_LITERAL", TokStringLiteral: "STRING_LITERAL",
	TokUserDefinedLiteral: "UD_LITERAL",
	TokLParen:             "(", TokRParen: ")", TokLBrace: "{", TokRBrace: "}",
	TokLBracket: "[", TokRBracket: "]", TokSemi: ";", TokComma: ",",
	TokColon: ":", TokColonColon: "::", TokArrow: "->", TokDot: ".",
	TokAmp: "&", TokStar: "*", TokPlus: "+", TokMinus: "-", TokTilde: "~",
	TokExclaim: "!", TokSlash: "/", TokPercent: "%", TokCaret: "^", TokPipe: "|",
	TokLessLess: "<<", TokGreaterGreater: ">>", TokAmpAmp: "&&", TokPipePipe: "||",
	TokEqual: "=", TokEqualEqual: "==", TokExclaimEqual: "!=",
	TokLess: "<", TokGreater: ">", TokLessEqual: "<=", TokGreaterEqual: ">=",
	TokSpaceship: "<=>", TokPlusPlus: "++", TokMinusMinus: "--",
	TokPlusEqual: "+=", TokMinusEqual: "-=", TokStarEqual: "*=", TokSlashEqual: "/=",
	TokPercentEqual: "%=", TokCaretEqual: "^=", TokPipeEqual: "|=", TokAmpEqual: "&=",
	TokLessLessEqual: "<<=", TokGreaterGreaterEqual: ">>=", TokArrowStar: "->*",
	TokKwIf: "if", TokKwElse: "else", TokKwWhile: "while", TokKwFor: "for",
	TokKwReturn: "return", TokKwBreak: "break", TokKwContinue: "continue",
	TokKwSwitch: "switch", TokKwCase: "case", TokKwDefault: "default",
	TokKwStruct: "struct", TokKwClass: "class", TokKwUnion: "union", TokKwEnum: "enum",
	TokKwNamespace: "namespace", TokKwTemplate: "template", TokKwExtern: "extern",
	TokKwAuto: "auto", TokKwNew: "new", TokKwDelete: "delete", TokKwCoAwait: "co_await",
	TokKwOperator: "operator",
}
