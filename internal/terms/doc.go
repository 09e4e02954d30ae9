// Package terms evaluates the bonded interaction terms of the force field:
// harmonic bonds, harmonic angles, periodic and Ryckaert-Bellemans
// torsions, and scaled 1-4 pairs.
//
// Terms live in a slot-indexed [Table] padded to a fixed capacity. Slot 0
// is reserved as the sentinel target of the inverse maps and is never
// assigned to a real term. Each evaluation writes one 3-vector per
// occupied role into the role force arrays; since a slot belongs to
// exactly one term, slots can be evaluated unordered on parallel chunks
// without write conflicts. The gather step that folds slots back onto
// particles lives in the gather package.
package terms
