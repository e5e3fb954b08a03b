// Package roomengine implements the room voting lifecycle inside the
// group-decision context.
//
// The module owns the room state machine (collecting -> voting -> closed ->
// resolved), option collection, one-vote-per-participant casting, the vote
// tally, and randomized tie resolution. It keeps business rules in
// application/domain layers and isolates persistence and transport behind
// ports and adapters.
package roomengine
