package cststore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/cx/internal/cst"
	"github.com/anthropics/cx/internal/cstfrontend"
	"github.com/anthropics/cx/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "cststore-test")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	cxDir := filepath.Join(tmpDir, ".cx")
	storeDB, err := store.Open(cxDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { storeDB.Close() })

	return storeDB
}

func buildTree(t *testing.T, src string) (*cst.Tree, int) {
	t.Helper()
	tu, tokens, err := cstfrontend.Translate([]byte(src))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	tree, err := cst.Build(cst.NewArena(len(tokens)), tu, tokens)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tree, len(tokens)
}

func TestHashSourceIsDeterministic(t *testing.T) {
	src := []byte("int x = 1;")
	if HashSource(src) != HashSource(src) {
		t.Error("HashSource is not deterministic for identical input")
	}
	if HashSource(src) == HashSource([]byte("int x = 2;")) {
		t.Error("HashSource collided for different input")
	}
}

func TestRecordSuccessAndRecentBuilds(t *testing.T) {
	st := openTestStore(t)
	r := NewRecorder(st)

	tree, tokenCount := buildTree(t, "int main() { return 0; }")

	id, err := r.RecordSuccess("main.cpp", []byte("int main() { return 0; }"), tree, tokenCount, 1000)
	if err != nil {
		t.Fatalf("RecordSuccess: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive build id, got %d", id)
	}

	summaries, err := r.RecentBuilds("main.cpp", 10)
	if err != nil {
		t.Fatalf("RecentBuilds: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 build, got %d", len(summaries))
	}

	s := summaries[0]
	if s.SourcePath != "main.cpp" {
		t.Errorf("SourcePath = %q, want main.cpp", s.SourcePath)
	}
	if s.TokenCount != tokenCount {
		t.Errorf("TokenCount = %d, want %d", s.TokenCount, tokenCount)
	}
	if s.NodeCount <= 0 {
		t.Errorf("expected positive NodeCount, got %d", s.NodeCount)
	}
	if s.RootKind != tree.Root().Kind().String() {
		t.Errorf("RootKind = %q, want %q", s.RootKind, tree.Root().Kind().String())
	}
	if s.ErrorMessage != "" {
		t.Errorf("expected empty ErrorMessage, got %q", s.ErrorMessage)
	}
}

func TestRecordFailure(t *testing.T) {
	st := openTestStore(t)
	r := NewRecorder(st)

	buildErr := &cstfrontend.UnsupportedConstructError{Construct: "goto"}
	if _, err := r.RecordFailure("broken.cpp", []byte("goto;"), buildErr, 2000); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	summaries, err := r.RecentBuilds("broken.cpp", 10)
	if err != nil {
		t.Fatalf("RecentBuilds: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 build, got %d", len(summaries))
	}
	if summaries[0].ErrorMessage == "" {
		t.Error("expected a non-empty ErrorMessage for a failed build")
	}
	if summaries[0].NodeCount != 0 || summaries[0].TokenCount != 0 {
		t.Errorf("expected zero counts for a failed build, got node=%d token=%d",
			summaries[0].NodeCount, summaries[0].TokenCount)
	}
}

func TestRecentBuildsOrdersNewestFirst(t *testing.T) {
	st := openTestStore(t)
	r := NewRecorder(st)

	tree, tokenCount := buildTree(t, "int x;")
	src := []byte("int x;")

	if _, err := r.RecordSuccess("a.cpp", src, tree, tokenCount, 100); err != nil {
		t.Fatalf("RecordSuccess 1: %v", err)
	}
	if _, err := r.RecordSuccess("a.cpp", src, tree, tokenCount, 200); err != nil {
		t.Fatalf("RecordSuccess 2: %v", err)
	}

	summaries, err := r.RecentBuilds("a.cpp", 10)
	if err != nil {
		t.Fatalf("RecentBuilds: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(summaries))
	}
	if summaries[0].BuiltAt != 200 || summaries[1].BuiltAt != 100 {
		t.Errorf("builds not ordered newest-first: got %d, %d", summaries[0].BuiltAt, summaries[1].BuiltAt)
	}
}

func TestRecentBuildsUnknownPathIsEmpty(t *testing.T) {
	st := openTestStore(t)
	r := NewRecorder(st)

	summaries, err := r.RecentBuilds("never-built.cpp", 10)
	if err != nil {
		t.Fatalf("RecentBuilds: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no builds, got %d", len(summaries))
	}
}
