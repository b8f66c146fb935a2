// Package pow provides the proof of work rule blocks must satisfy to be
// accepted into the chain.
package pow

// HasValidPrefix checks the hash complies with the POW rules. The hex form
// of the hash needs to start with a difficulty number of 0's.
func HasValidPrefix(hash []byte, difficulty uint8) bool {
	if int(difficulty) > len(hash)*2 {
		return false
	}

	for i := 0; i < int(difficulty); i++ {
		b := hash[i/2]

		// Even digits live in the high nibble of the byte.
		nibble := b & 0x0f
		if i%2 == 0 {
			nibble = b >> 4
		}

		if nibble != 0 {
			return false
		}
	}

	return true
}
