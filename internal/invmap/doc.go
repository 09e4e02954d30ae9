// Package invmap builds the inverse index maps used to gather per-term
// force contributions back onto particles without write conflicts.
//
// A bonded term occupies a slot in a padded term table and references up to
// four particles, one per structural role (I, J, K, L). The inverse map for
// a role answers the opposite question: for a given particle, which term
// slots reference it in that role? The answer is stored as a fixed number of
// dense "level" arrays indexed by particle id. Level l holds the slot of the
// l-th referencing term, or the sentinel slot 0 when the particle has fewer
// referencing terms than levels.
//
// Slot 0 of every role force array is reserved and guaranteed zero, so a
// sentinel lookup adds exactly nothing. Every lane in a gather pass performs
// the same load-add regardless of how many terms touch its particle.
//
// Capacity is fixed at build time. A particle referenced by more terms than
// the provisioned level count is a configuration error reported by
// [ConfigError] before any force evaluation can run.
package invmap
