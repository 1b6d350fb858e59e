package common

import "errors"

var (
	ErrorInvalidValue  = errors.New("invalid value")
	ErrorEmptyCurve    = errors.New("empty curve")
	ErrorLengthNotSame = errors.New("t and x length not same")
	ErrorNotAscending  = errors.New("sampling points not strictly ascending")
	ErrorOutOfRange    = errors.New("sampling points out of [0, 1]")
)
