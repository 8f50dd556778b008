package gksummary

import "errors"

// All errors returned by this package are non-retryable and are reported to
// the immediate caller; the package itself never logs or recovers.
var (
	// ErrEpsilonOutOfRange is returned by the constructors when the error
	// tolerance is not in (0, 1).
	ErrEpsilonOutOfRange = errors.New("gksummary: epsilon must be in (0, 1)")

	// ErrQuantileOutOfRange is returned by Quantile when the requested
	// fraction is not in [0, 1].
	ErrQuantileOutOfRange = errors.New("gksummary: quantile must be in [0, 1]")

	// ErrInvalidValue is returned by Insert for values that do not order
	// against themselves, such as NaN. The summary is left unmodified.
	ErrInvalidValue = errors.New("gksummary: value is not orderable")

	// ErrNoData is returned by Quantile on a summary with no observations.
	ErrNoData = errors.New("gksummary: summary is empty")

	// ErrIncompatibleMerge is returned by Merge when the two summaries were
	// not built with the same compaction strategy.
	ErrIncompatibleMerge = errors.New("gksummary: incompatible summaries")

	// ErrUnknownStrategy is returned by NewWithStrategy for strategies
	// outside the declared set.
	ErrUnknownStrategy = errors.New("gksummary: unknown strategy")
)
