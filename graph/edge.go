package graph

// Transition is an immutable directed edge (spec §3). Condition is an
// expression string evaluated against a fresh environment snapshot at
// transition time; an empty Condition always evaluates true (spec §3
// "absent ⇒ always true").
type Transition struct {
	SourceID  int
	TargetID  int
	Condition string
}
