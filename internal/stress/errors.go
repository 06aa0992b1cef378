package stress

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrVerification         = errors.New("verification failed")
)
