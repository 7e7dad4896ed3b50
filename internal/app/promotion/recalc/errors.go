package recalc

import "errors"

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("recalculation queue is closed")
