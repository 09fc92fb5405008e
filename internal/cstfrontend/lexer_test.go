package cstfrontend

import (
	"testing"

	"github.com/anthropics/cx/internal/cst"
)

func TestLexer_BasicPunctuationAndKeywords(t *testing.T) {
	toks, err := NewLexer("if (a >= b) { return a + b; }").Tokens()
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	want := []cst.TokenKind{
		cst.TokKwIf, cst.TokLParen, cst.TokIdentifier, cst.TokGreaterEqual, cst.TokIdentifier, cst.TokRParen,
		cst.TokLBrace, cst.TokKwReturn, cst.TokIdentifier, cst.TokPlus, cst.TokIdentifier, cst.TokSemi, cst.TokRBrace,
		cst.TokEOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].TokenKind() != k {
			t.Errorf("token %d: kind = %v, want %v (text %q)", i, toks[i].TokenKind(), k, toks[i].Text())
		}
		if int(toks[i].Loc()) != i {
			t.Errorf("token %d: Loc() = %d, want %d", i, toks[i].Loc(), i)
		}
	}
}

func TestLexer_LongestMatchPunctuation(t *testing.T) {
	toks, err := NewLexer("a <<= b; a::b; a->b; a <=> b;").Tokens()
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	var kinds []cst.TokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.TokenKind())
	}
	assertContains(t, kinds, cst.TokLessLessEqual)
	assertContains(t, kinds, cst.TokColonColon)
	assertContains(t, kinds, cst.TokArrow)
	assertContains(t, kinds, cst.TokSpaceship)
}

func assertContains(t *testing.T, kinds []cst.TokenKind, want cst.TokenKind) {
	t.Helper()
	for _, k := range kinds {
		if k == want {
			return
		}
	}
	t.Errorf("expected kind %v not found in %v", want, kinds)
}

func TestLexer_CommentsSkippedLiteralsKept(t *testing.T) {
	toks, err := NewLexer(`// line comment
	int x = 5; /* block
	comment */ auto s = "hi"_lit; char c = 'a';`).Tokens()
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	foundString := false
	for _, tk := range toks {
		if tk.TokenKind() == cst.TokStringLiteral {
			foundString = true
			if tk.Text() != `"hi"_lit` {
				t.Errorf("string literal text = %q, want with UDL suffix retained", tk.Text())
			}
		}
	}
	if !foundString {
		t.Fatal("expected a string literal token")
	}
}

func TestLexer_UnterminatedStringErrors(t *testing.T) {
	if _, err := NewLexer(`"unterminated`).Tokens(); err == nil {
		t.Fatal("expected an error for unterminated string literal")
	}
}
