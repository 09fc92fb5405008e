// Package cststore persists a record of each syntax-tree build against the
// existing Dolt-backed store, so `cx cst history` and the `cx_cst` MCP tool
// can report build history without re-parsing a file on every call.
package cststore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/anthropics/cx/internal/cst"
	"github.com/anthropics/cx/internal/store"
)

// Summary is one recorded build outcome.
type Summary struct {
	ID           int64
	SourcePath   string
	SourceHash   string
	NodeCount    int
	TokenCount   int
	RootKind     string
	BuiltAt      int64
	ErrorMessage string
}

// Recorder writes and reads cst_builds rows through an existing store.Store.
type Recorder struct {
	st *store.Store
}

// NewRecorder wraps an already-open store.
func NewRecorder(st *store.Store) *Recorder {
	return &Recorder{st: st}
}

// HashSource returns the content hash RecordSuccess/RecordFailure store
// alongside a build, so two builds of identical source can be recognized
// without comparing full file contents.
func HashSource(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// RecordSuccess stores a completed build's shape: total node count (every
// Leaf and Tree node reachable from the root, inclusive), token count, and
// the root node's kind (always TranslationUnit for a whole-file build, but
// callers may build a sub-tree via a selector query in the future).
func (r *Recorder) RecordSuccess(sourcePath string, src []byte, tree *cst.Tree, tokenCount int, builtAt int64) (int64, error) {
	nodeCount := countNodes(tree.Root())
	res, err := r.st.DB().Exec(
		`INSERT INTO cst_builds (source_path, source_hash, node_count, token_count, root_kind, built_at, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		sourcePath, HashSource(src), nodeCount, tokenCount, tree.Root().Kind().String(), builtAt,
	)
	if err != nil {
		return 0, fmt.Errorf("cststore: record build: %w", err)
	}
	return res.LastInsertId()
}

// RecordFailure stores a build attempt that failed before a Tree existed,
// keeping the history table a complete record of every invocation rather
// than only the successful ones.
func (r *Recorder) RecordFailure(sourcePath string, src []byte, buildErr error, builtAt int64) (int64, error) {
	res, err := r.st.DB().Exec(
		`INSERT INTO cst_builds (source_path, source_hash, node_count, token_count, root_kind, built_at, error_message)
		 VALUES (?, ?, 0, 0, '', ?, ?)`,
		sourcePath, HashSource(src), builtAt, buildErr.Error(),
	)
	if err != nil {
		return 0, fmt.Errorf("cststore: record failed build: %w", err)
	}
	return res.LastInsertId()
}

// RecentBuilds returns up to limit of the most recently recorded builds for
// sourcePath, newest first.
func (r *Recorder) RecentBuilds(sourcePath string, limit int) ([]Summary, error) {
	rows, err := r.st.DB().Query(
		`SELECT id, source_path, source_hash, node_count, token_count, root_kind, built_at, COALESCE(error_message, '')
		 FROM cst_builds WHERE source_path = ? ORDER BY built_at DESC, id DESC LIMIT ?`,
		sourcePath, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("cststore: query builds: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.SourcePath, &s.SourceHash, &s.NodeCount, &s.TokenCount, &s.RootKind, &s.BuiltAt, &s.ErrorMessage); err != nil {
			return nil, fmt.Errorf("cststore: scan build row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// countNodes walks the whole tree, counting the root and every descendant.
func countNodes(n *cst.Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children() {
		total += countNodes(c)
	}
	return total
}
