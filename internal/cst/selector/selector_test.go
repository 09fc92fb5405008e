package selector

import (
	"testing"

	"github.com/anthropics/cx/internal/cst"
)

// buildSample constructs `int x;` via the package's own exported Build entry
// point, to exercise the selector against a real tree rather than a
// hand-built one.
func buildSample(t *testing.T) *cst.Node {
	t.Helper()
	tokens := []cst.Token{
		cst.NewToken(0, cst.TokIdentifier, "int", true),
		cst.NewToken(1, cst.TokIdentifier, "x", true),
		cst.NewToken(2, cst.TokSemi, ";", true),
	}
	tu := &cst.TranslationUnitDecl{Decls: []cst.Decl{&cst.SimpleDeclDecl{
		Type:          &cst.TypeLoc{Kind: cst.TLOther, End: cst.InvalidLocation},
		NameLoc:       1,
		ChainBeginLoc: 0,
	}}}
	tree, err := cst.Build(cst.NewArena(len(tokens)), tu, tokens)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree.Root()
}

func TestParse_KindAndRole(t *testing.T) {
	root := buildSample(t)
	results, err := Eval(root, `kind(root(), "SimpleDeclaration")`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("kind(SimpleDeclaration) = %d results, want 1", len(results))
	}

	declarators, err := Eval(root, `role(kind(root(), "SimpleDeclaration"), "SimpleDeclaration_declarator")`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(declarators) != 1 {
		t.Fatalf("role(SimpleDeclarationDeclarator) = %d results, want 1", len(declarators))
	}
}

func TestParse_Nth(t *testing.T) {
	root := buildSample(t)
	results, err := Eval(root, `nth(children(root()), "0")`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("nth(children,0) = %d results, want 1", len(results))
	}
}

func TestParse_RejectsUnknownOperation(t *testing.T) {
	if _, err := Parse(`bogus("x")`); err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	cases := []string{
		`kind(root()`,
		`kind(root(), )`,
		`"just a string"(1)`,
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q): expected error, got none", c)
		}
	}
}
