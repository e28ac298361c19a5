// Package combat implements the combat tracker state machine.
//
// The package holds the tracker data model and pure transition
// functions over it: turn advancement with wraparound, round counting,
// roster ordering by initiative roll, and per-type merge functions for
// partial updates. Functions operate on values and return new state;
// the session store owns persistence and broadcasting.
package combat
