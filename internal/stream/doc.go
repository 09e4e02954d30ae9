// Package stream provides the flat buffer primitives shared by the force
// accumulation kernels.
//
// All particle quantities are stored in flat []float64 buffers with three
// components per particle:
//
//   - [Vec3Buffer]: allocate a zeroed buffer for n particles
//   - [Pool]: recycle fixed-width scratch buffers between evaluations
//   - [ParallelFor]: chunked parallel iteration with a completion barrier
//
// # Thread Safety
//
// ParallelFor acts as a barrier: it returns only after every chunk has
// finished, so callers may run dependent passes back to back without extra
// synchronization. Pool is safe for concurrent use.
package stream
