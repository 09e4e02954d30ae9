// Package engine wires the force field together: it pads the bonded term
// table, builds and validates the inverse maps, pools the role force
// scratch arrays, allocates the duplicated partial buffers, and
// orchestrates one force evaluation per call.
//
// Construction is fail-fast: every capacity check runs in [New], so a
// configuration problem (a particle referenced by more terms than a role's
// provisioned levels) surfaces before any numerical work. Once New
// succeeds, Forces is expected to always succeed.
//
// # Evaluation order
//
//  1. Bonded term evaluators fill the role force arrays (barrier).
//  2. The reducer gathers role arrays through the inverse maps, one
//     sequential pass per (role, level).
//  3. The nonbonded evaluator fills the duplicated partials (barrier).
//  4. The merger folds the partials into the force buffer.
//
// The force buffer is caller-owned and strictly added to; forces present
// on entry are preserved.
package engine
