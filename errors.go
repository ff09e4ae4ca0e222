package codecstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrWriteNotSupported indicates a write on a stream not opened for writing.
	ErrWriteNotSupported = errors.New("codecstream: write not permitted, mode has no 'w'")

	// ErrMissingDependency indicates a path-based stream has no store to open it with.
	ErrMissingDependency = errors.New("codecstream: missing dependency")

	// ErrClosed indicates the stream has been closed.
	ErrClosed = errors.New("codecstream: stream closed")

	// ErrNotOpen indicates a path-based stream was used before Open.
	ErrNotOpen = errors.New("codecstream: stream not open")

	// ErrInvalidMode indicates a mode string that is not valid UTF-8.
	ErrInvalidMode = errors.New("codecstream: invalid mode")

	// ErrNoHandle indicates no handle was provided.
	ErrNoHandle = errors.New("codecstream: no handle provided")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("codecstream: no store provided")
)

// CodecError reports a failure of the compressor, the decompressor or the
// text encoding. The stream should be closed after a CodecError.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codecstream: %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
