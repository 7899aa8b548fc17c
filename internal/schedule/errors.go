package schedule

import "errors"

var (
	// ErrInvalidPeriod reports a non-positive base period.
	ErrInvalidPeriod = errors.New("schedule: base period must be positive")

	// ErrInvalidRateBounds reports min/max learning rate bounds out of order.
	ErrInvalidRateBounds = errors.New("schedule: invalid rate bounds")

	// ErrNegativeEpoch reports a negative epoch number passed to Update.
	ErrNegativeEpoch = errors.New("schedule: negative epoch number")
)
