// Package token defines the runtime execution markers the scheduler moves
// through the graph, and the color stack that keeps nested parallel
// fork/join regions disambiguated (spec §3, §4.7).
package token

import (
	"time"

	"github.com/google/uuid"
)

// Color is a unique opaque identifier minted by the scheduler on every
// ParallelSplit firing (spec §3). Zero is the root color shared by every
// Start token (spec §9, Open Questions).
type Color int64

// RootColor is the color every Start token carries (spec §9).
const RootColor Color = 0

// Token is a live execution point. Spec §3 names two fields, `color` and
// `parent_color`; here they are the top two entries of Colors, a genuine
// stack. A flat two-field record loses the grandparent color once a split
// nests two levels deep inside another split's branch, which breaks
// correct un-nesting at the inner sync — so Colors is kept as a stack of
// every enclosing split's color, root first.
type Token struct {
	ID     string
	NodeID int
	// Via is the node id of the transition that delivered this token, or
	// -1 for a root Start token with no predecessor. A ParallelSync uses
	// it to identify which expected source just arrived (spec §4.7).
	Via       int
	Colors    []Color
	CreatedAt time.Time
}

// New creates a token at nodeID, arrived via the transition from node
// via, inheriting colors (which must not be mutated by the caller
// afterwards — Token takes ownership of the slice).
func New(nodeID, via int, colors []Color) Token {
	return Token{
		ID:        uuid.NewString(),
		NodeID:    nodeID,
		Via:       via,
		Colors:    colors,
		CreatedAt: time.Now(),
	}
}

// Root creates a Start token at nodeID carrying only RootColor.
func Root(nodeID int) Token {
	return New(nodeID, -1, []Color{RootColor})
}

// Current returns the color this token presently belongs to, i.e. the
// color of the innermost enclosing split (spec §3 `color`).
func (t Token) Current() Color {
	if len(t.Colors) == 0 {
		return RootColor
	}
	return t.Colors[len(t.Colors)-1]
}

// Parent returns the color this token's current region was forked from,
// i.e. the color that will be restored once the enclosing sync fires
// (spec §3 `parent_color`, spec §4.7 "restoring the pre-split color").
func (t Token) Parent() Color {
	if len(t.Colors) < 2 {
		return RootColor
	}
	return t.Colors[len(t.Colors)-2]
}

// Pushed returns a new token at nodeID with c pushed onto this token's
// color stack — used by ParallelSplit to stamp every emitted token with
// the freshly minted color while preserving the enclosing ones.
func (t Token) Pushed(nodeID int, c Color) Token {
	colors := make([]Color, len(t.Colors)+1)
	copy(colors, t.Colors)
	colors[len(colors)-1] = c
	return New(nodeID, t.NodeID, colors)
}

// Popped returns a new token at nodeID with the current color popped off —
// used by ParallelSync when it fires, restoring the pre-split color.
func (t Token) Popped(nodeID int) Token {
	if len(t.Colors) == 0 {
		return New(nodeID, t.NodeID, nil)
	}
	colors := make([]Color, len(t.Colors)-1)
	copy(colors, t.Colors[:len(t.Colors)-1])
	return New(nodeID, t.NodeID, colors)
}

// At returns a new token at nodeID carrying the same color stack — used
// for ordinary (non-fork, non-join) transitions.
func (t Token) At(nodeID int) Token {
	colors := make([]Color, len(t.Colors))
	copy(colors, t.Colors)
	return New(nodeID, t.NodeID, colors)
}
