// Package gather reduces per-term force contributions into the shared
// per-particle force buffer without write conflicts.
//
// Two reduction paths exist, mirroring the two access patterns of the
// force field:
//
//   - [Reducer]: the sparse bonded path. Term evaluators write one 3-vector
//     per role into slot-indexed role force arrays; Accumulate walks the
//     precomputed inverse maps level by level and adds each particle's
//     referencing slots into its accumulator.
//   - [Merger]: the regular pairwise path. The nonbonded evaluator spreads
//     its writes over D duplicated partial buffers; Merge folds them back
//     by particle-wise summation.
//
// # Ordering
//
// Levels addressing the same destination run as strictly sequential passes:
// each ParallelFor call is a barrier, so no two passes ever perform a
// concurrent read-modify-write on the same particle. Within one pass,
// particles are independent and run on parallel chunks. Roles execute in
// the fixed order I, J, K, L so repeated runs produce bitwise identical
// sums.
package gather
