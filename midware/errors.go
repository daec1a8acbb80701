package midware

import "github.com/AdguardTeam/golibs/errors"

const (
	// ErrNoNext is returned by [Call.Chain] when no next reference has been
	// resolved for the invocation, for example when a [Call] is used without
	// ever having been produced by an [Adaptor] entry point.
	ErrNoNext errors.Error = "no next handler"

	// ErrUnsupportedNext is returned by [Call.Chain], wrapped, when the value
	// given to an entry point as the next reference supports none of the
	// known calling conventions.
	ErrUnsupportedNext errors.Error = "unsupported next handler type"
)
