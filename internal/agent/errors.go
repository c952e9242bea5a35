package agent

import "errors"

// ErrModelFailure indicates the upstream completion call failed. The
// loop does not recover from it; transports terminate their stream (or
// send an apology) and the thread keeps whatever progress was appended
// before the failure.
var ErrModelFailure = errors.New("model call failed")
