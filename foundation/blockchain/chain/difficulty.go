package chain

import "math"

// Difficulty returns the difficulty level a block must satisfy to be
// appended to a chain of the specified length. An empty chain requires 1,
// otherwise the level is floor(log10(length+2) + 1), which is the number of
// decimal digits in length+2. Counting digits keeps float rounding out of
// the result at the powers of ten.
func Difficulty(length int) uint8 {
	if length <= 0 {
		return 1
	}

	var level uint64
	for n := uint64(length) + 2; n > 0; n /= 10 {
		level++
	}

	if level > math.MaxUint8 {
		return math.MaxUint8
	}

	return uint8(level)
}
