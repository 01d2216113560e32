package service

import (
	"sync"

	"swiftscope/internal/domain/errors/domain"
	"swiftscope/internal/domain/valueobject"

	"github.com/google/uuid"
)

// TreeArena is the table of open syntax trees. Handles are opaque UUIDs;
// a handle stays valid until released, including across edits, because
// every edit stores its result under a fresh handle.
type TreeArena struct {
	mu    sync.RWMutex
	trees map[uuid.UUID]*valueobject.SyntaxTree
}

// NewTreeArena creates an empty arena.
func NewTreeArena() *TreeArena {
	return &TreeArena{trees: make(map[uuid.UUID]*valueobject.SyntaxTree)}
}

// Put stores a tree and returns its new handle.
func (a *TreeArena) Put(tree *valueobject.SyntaxTree) uuid.UUID {
	handle := uuid.New()
	a.mu.Lock()
	a.trees[handle] = tree
	a.mu.Unlock()
	return handle
}

// Get resolves a handle to its tree.
func (a *TreeArena) Get(handle uuid.UUID) (*valueobject.SyntaxTree, error) {
	a.mu.RLock()
	tree, ok := a.trees[handle]
	a.mu.RUnlock()
	if !ok {
		return nil, domain.InvalidHandleError(handle.String())
	}
	return tree, nil
}

// Release drops a handle. Unknown handles are ignored.
func (a *TreeArena) Release(handle uuid.UUID) {
	a.mu.Lock()
	delete(a.trees, handle)
	a.mu.Unlock()
}

// Len returns the number of open trees.
func (a *TreeArena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.trees)
}
