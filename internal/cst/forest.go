package cst

// pendingForest holds a set of detached subtrees keyed by their first
// token, atomically replacing a contiguous token range with a new parent on
// fold.
//
// The forest's domain is always a partition of the non-EOF token array: the
// subtree keyed at token index t covers exactly [t, next(t)) where next(t)
// is the first index of the next entry (or the array end for the last
// entry). Because token indices are contiguous and every entry knows its
// own LastToken, walking the entries covered by a range does not require an
// ordered map: given the entry at the range's start, the next entry's key
// is exactly one past this entry's LastToken. A plain map keyed by
// first-token index gives efficient lookup and contiguous-range erasure
// without needing a third-party ordered-map type.
type pendingForest struct {
	entries map[Location]*Node // keyed by FirstToken()
}

func newPendingForest(tokens []*Token, arena *Arena) *pendingForest {
	f := &pendingForest{entries: make(map[Location]*Node, len(tokens))}
	// Create all leaf nodes. Note that EOF is not included in the forest.
	for _, t := range tokens {
		if t.TokenKind() == TokEOF {
			continue
		}
		leaf := arena.newLeaf(t)
		leaf.original = true
		leaf.canModify = t.HasSpelled()
		f.entries[t.Loc()] = leaf
	}
	return f
}

// entryAt looks up the pending entry starting exactly at loc.
func (f *pendingForest) entryAt(loc Location) *Node {
	return f.entries[loc]
}

// walkRange returns, in order, the forest entries covering [first, lastIncl]
// inclusive, and true iff the range coincides exactly with a contiguous run
// of forest entries (i.e. no entry straddles the boundary).
func (f *pendingForest) walkRange(first, lastIncl Location) ([]*Node, bool) {
	var out []*Node
	cur := first
	for cur <= lastIncl {
		n := f.entries[cur]
		if n == nil {
			return nil, false
		}
		out = append(out, n)
		cur = n.lastTok + 1
	}
	// The last entry must end exactly at lastIncl, not straddle past it.
	if len(out) == 0 || out[len(out)-1].lastTok != lastIncl {
		return nil, false
	}
	return out, true
}

// assignRole requires the range [first, lastIncl] coincides with exactly
// one forest entry whose role is currently Detached, and sets its role.
func (f *pendingForest) assignRole(first, lastIncl Location, role Role) {
	entries, ok := f.walkRange(first, lastIncl)
	if !ok || len(entries) != 1 {
		panic(newInternalError("assignRole: range [%d,%d] does not coincide with exactly one pending entry", first, lastIncl))
	}
	n := entries[0]
	if n.role != Detached {
		panic(newInternalError("assignRole: re-assigning role for a child (already %s)", n.role))
	}
	n.role = role
}

// foldChildren requires newNode has no children and [first, lastIncl]
// coincides with a contiguous sequence of forest entries. For each such
// entry in reverse order: if its role is Detached, set it to Unknown; then
// prepend it as a child of newNode. Remove those entries from the forest
// and insert newNode keyed at first. Sets newNode.original = true and
// newNode.canModify from spelled-token availability over the range.
func (f *pendingForest) foldChildren(first, lastIncl Location, newNode *Node) {
	if len(newNode.children) != 0 {
		panic(newInternalError("foldChildren: node already has children"))
	}
	entries, ok := f.walkRange(first, lastIncl)
	if !ok {
		panic(newInternalError("foldChildren: range [%d,%d] crosses boundaries of existing subtrees", first, lastIncl))
	}

	canModify := true
	children := make([]*Node, 0, len(entries))
	for _, c := range entries {
		if c.role == Detached {
			c.role = Unknown
		}
		if !c.canModify {
			canModify = false
		}
		children = append(children, c)
		delete(f.entries, c.firstTok)
	}

	newNode.children = children
	newNode.original = true
	newNode.canModify = canModify
	newNode.firstTok = first
	newNode.lastTok = lastIncl
	f.entries[first] = newNode
}

// finalize requires the forest has exactly one entry. Returns it and empties
// the forest.
func (f *pendingForest) finalize() *Node {
	if len(f.entries) != 1 {
		panic(newInternalError("finalize: forest has %d entries, expected 1", len(f.entries)))
	}
	var root *Node
	for _, n := range f.entries {
		root = n
	}
	f.entries = map[Location]*Node{}
	return root
}
