package jobs

import "errors"

// ErrTableFull is returned by Register when the table is at capacity.
var ErrTableFull = errors.New("jobs: table full")
