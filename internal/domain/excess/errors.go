package excess

import "errors"

// ErrUnknownGranularity is returned for unsupported bucket names.
var ErrUnknownGranularity = errors.New("unknown granularity")
