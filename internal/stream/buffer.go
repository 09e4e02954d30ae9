package stream

// Stride is the number of components stored per particle.
const Stride = 3

// Vec3Buffer returns a zeroed buffer holding one 3-vector per slot.
func Vec3Buffer(slots int) []float64 {
	return make([]float64, slots*Stride)
}

// Zero clears a buffer in place.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// PadWidth rounds n up to the next multiple of block. Padded entries past n
// are expected to stay zero for the lifetime of the buffer.
func PadWidth(n, block int) int {
	if block <= 1 {
		return n
	}
	return ((n + block - 1) / block) * block
}
