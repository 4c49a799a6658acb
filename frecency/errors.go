package frecency

import "errors"

// ErrDBUnavailable is returned by New when the embedded key-value store
// cannot be opened or written (§4.3, §7). The coordinator is expected to
// fall back to NewInMemory and continue serving frecency from memory
// only, per §7's DbUnavailable failure semantics.
var ErrDBUnavailable = errors.New("frecency: database unavailable")
