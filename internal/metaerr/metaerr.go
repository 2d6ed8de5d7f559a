// Package metaerr attaches key/value metadata to errors so that callers
// can enrich log records without stuffing everything into the message.
package metaerr

import "errors"

type metaError struct {
	err  error
	meta []any
}

func (e *metaError) Error() string {
	return e.err.Error()
}

func (e *metaError) Unwrap() error {
	return e.err
}

// WithMetadata wraps err with the given key/value pairs.
// A nil err returns nil.
func WithMetadata(err error, keyvals ...any) error {
	if err == nil {
		return nil
	}
	return &metaError{err: err, meta: keyvals}
}

// GetMetadata collects the key/value pairs of every metadata-carrying
// error in the chain of err, outermost first.
func GetMetadata(err error) []any {
	var keyvals []any
	for err != nil {
		var merr *metaError
		if !errors.As(err, &merr) {
			break
		}
		keyvals = append(keyvals, merr.meta...)
		err = merr.err
	}
	return keyvals
}
