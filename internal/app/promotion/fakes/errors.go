package fakes

import "errors"

// ErrApply is returned by Catalog.ApplySnapshots when FailApplyAt triggers.
var ErrApply = errors.New("fake: snapshot write failed")
