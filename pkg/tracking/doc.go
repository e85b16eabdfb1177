// Package tracking matches issues raised by a new analysis ("raws") against
// issues known from a previous analysis or another branch ("bases").
//
// Matching runs a fixed cascade of key strategies, strongest first. Each pass
// only considers what is still unmatched after the previous one, and a raw is
// paired only when exactly one base shares its key. Ambiguous keys are left
// for the next pass.
package tracking
