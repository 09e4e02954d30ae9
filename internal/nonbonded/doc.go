// Package nonbonded evaluates the all-pairs Lennard-Jones and Coulomb
// interactions.
//
// Unlike the sparse bonded path, the pairwise access pattern is regular:
// every particle interacts with a predictable stripe of partners. The
// evaluator therefore skips the inverse-map machinery and instead spreads
// its writes over D duplicated partial-force buffers, one per partner
// stripe (partner index mod D). Stripes never share a destination element
// with another stripe, so all writes are branch-free and conflict-free;
// the gather package's Merger folds the duplicates back into the shared
// force buffer.
package nonbonded
