package parser

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

const sampleCpp = `
int add(int a, int b) {
	return a + b;
}

class Point {
public:
	int x;
	int y;
};
`

func TestNewParser(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser(Cpp) failed: %v", err)
	}
	defer p.Close()

	if p.Language() != Cpp {
		t.Errorf("Language() = %q, want %q", p.Language(), Cpp)
	}
}

func TestNewParserUnsupportedLanguage(t *testing.T) {
	_, err := NewParser(Language("cobol"))
	if err == nil {
		t.Fatal("expected an error for an unsupported language")
	}
	if _, ok := err.(*UnsupportedLanguageError); !ok {
		t.Errorf("expected *UnsupportedLanguageError, got %T", err)
	}
}

func TestParser_Parse(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(sampleCpp))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer result.Close()

	if result.Language != Cpp {
		t.Errorf("Language = %q, want %q", result.Language, Cpp)
	}
	if result.Root == nil {
		t.Fatal("Root is nil")
	}
	if result.HasErrors() {
		t.Error("expected no syntax errors in well-formed sample")
	}
}

func TestParseResult_FindNodesByType(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(sampleCpp))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer result.Close()

	funcs := result.FindNodesByType("function_definition")
	if len(funcs) != 1 {
		t.Errorf("expected 1 function_definition, got %d", len(funcs))
	}

	classes := result.FindNodesByType("class_specifier")
	if len(classes) != 1 {
		t.Errorf("expected 1 class_specifier, got %d", len(classes))
	}
}

func TestParseResult_WalkNodes(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(sampleCpp))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer result.Close()

	count := 0
	result.WalkNodes(func(n *sitter.Node) bool {
		count++
		return true
	})
	if count == 0 {
		t.Error("expected WalkNodes to visit at least one node")
	}
}

func TestParseResult_NodeText(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(sampleCpp))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer result.Close()

	funcs := result.FindNodesByType("function_definition")
	if len(funcs) != 1 {
		t.Fatalf("expected 1 function_definition, got %d", len(funcs))
	}
	text := result.NodeText(funcs[0])
	if text == "" {
		t.Error("expected non-empty node text")
	}
}

func TestLanguageFromExtension(t *testing.T) {
	for _, ext := range []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx", ".c", ".h"} {
		if got := LanguageFromExtension(ext); got != Cpp {
			t.Errorf("LanguageFromExtension(%q) = %q, want %q", ext, got, Cpp)
		}
	}
	if got := LanguageFromExtension(".py"); got != "" {
		t.Errorf("LanguageFromExtension(.py) = %q, want empty", got)
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{Message: "bad token", File: "main.cpp", Line: 3, Column: 5}
	want := "main.cpp:3:5: bad token"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noFile := &ParseError{Message: "bad token", Line: 3, Column: 5}
	if noFile.Error() != "3:5: bad token" {
		t.Errorf("Error() without file = %q", noFile.Error())
	}
}

func TestUnsupportedLanguageError(t *testing.T) {
	err := &UnsupportedLanguageError{Language: "cobol"}
	if err.Error() != "unsupported language: cobol" {
		t.Errorf("Error() = %q", err.Error())
	}
}
