package detector

import "errors"

var errLinguaTooFewLanguages = errors.New("lingua needs at least 2 languages to choose from")

// WeakError marks a response that was received but not good enough (low
// confidence, filtered language). It never counts toward failover.
type WeakError struct {
	Err error
}

func newWeakError(err error) *WeakError {
	return &WeakError{
		Err: err,
	}
}

func (e *WeakError) Error() string {
	return e.Err.Error()
}

func (e *WeakError) Unwrap() error {
	return e.Err
}

func CheckWeakError(err error) bool {
	var weakErr *WeakError
	return errors.As(err, &weakErr)
}
