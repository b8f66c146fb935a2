package chain

import "errors"

// ErrIncorrectDifficulty is returned from AddBlock when the block's hash
// doesn't satisfy the difficulty for the current chain length. The caller
// should mine the block again or discard it.
var ErrIncorrectDifficulty = errors.New("block hash does not satisfy difficulty")

// ErrInvalidPreviousHash is returned from AddBlock when the block doesn't
// point at the current tip. The caller should refresh its view of the tip
// and link the block again.
var ErrInvalidPreviousHash = errors.New("block previous hash does not match tip")
