package bins

import "errors"

// ErrOffsetMismatch is returned by Add when the two arrays' [lo, hi]
// offsets differ.
var ErrOffsetMismatch = errors.New("bins: offset mismatch")
