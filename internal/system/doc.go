// Package system describes the particle topology consumed by the force
// engine: per-particle nonbonded parameters plus the bonded term lists
// (bonds, angles, torsions, 1-4 pairs).
//
// Topology is supplied once at setup. The engine pads and indexes it into
// fixed-width tables; there is no incremental update path, so any topology
// change means building a new engine.
package system
