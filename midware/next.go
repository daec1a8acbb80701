package midware

import (
	"context"
	"fmt"
	"net/http"
)

// refKind is the resolved calling convention of a next reference.
type refKind uint8

// refKind values, in forwarding precedence order.  refNone is the zero value
// of an unresolved reference.
const (
	refNone refKind = iota
	refHandler
	refProcessor
	refDoublePass
	refSinglePass
)

// nextRef is a next reference resolved into one of the supported calling
// conventions.  It is constructed once, at the entry-point boundary, so that
// forwarding is an exhaustive switch instead of capability probing.
type nextRef struct {
	handler   Handler
	processor Processor
	double    DoublePassFunc
	single    SinglePassFunc
	err       error
	kind      refKind
}

// resolveNext classifies v into a [nextRef].  The [Handler] capability is
// preferred over [Processor], which is preferred over the callable shapes.
// If v supports none of the conventions, the returned reference carries an
// error that surfaces on forwarding, not here.
func resolveNext(v any) (n nextRef) {
	switch v := v.(type) {
	case Handler:
		return nextRef{kind: refHandler, handler: v}
	case Processor:
		return nextRef{kind: refProcessor, processor: v}
	case DoublePassFunc:
		return nextRef{kind: refDoublePass, double: v}
	case func(context.Context, *http.Request, *http.Response) (*http.Response, error):
		return nextRef{kind: refDoublePass, double: v}
	case SinglePassFunc:
		return nextRef{kind: refSinglePass, single: v}
	case func(context.Context, *http.Request) (*http.Response, error):
		return nextRef{kind: refSinglePass, single: v}
	case nil:
		return nextRef{kind: refNone, err: ErrNoNext}
	default:
		return nextRef{
			kind: refNone,
			err:  fmt.Errorf("forwarding: %w: %T", ErrUnsupportedNext, v),
		}
	}
}
