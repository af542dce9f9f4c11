package cart

import (
	"errors"
	"fmt"
)

// Code is the closed error taxonomy exposed to embedders. Every error
// returned by this package maps onto exactly one code via CodeOf. The
// numeric values are part of the format's public contract and must not be
// reordered.
type Code uint32

const (
	CodeOK                Code = 0
	CodeBadArgumentString Code = 1
	CodeOpenFileRead      Code = 2
	CodeOpenFileWrite     Code = 3
	CodeBadJSONArgument   Code = 5
	CodeProcessing        Code = 6
	CodeNullArgument      Code = 7
)

var (
	// ErrBadArgumentString reports a string argument that failed to parse or
	// validate, such as an empty file path.
	ErrBadArgumentString = errors.New("bad string argument")
	// ErrOpenFileRead reports an input file that could not be opened.
	ErrOpenFileRead = errors.New("failed to open input file")
	// ErrOpenFileWrite reports an output file that could not be opened.
	ErrOpenFileWrite = errors.New("failed to open output file")
	// ErrBadJSONArgument reports caller metadata that is not a JSON object.
	ErrBadJSONArgument = errors.New("metadata is not a json object")
	// ErrProcessing reports a format violation, corruption, unsupported
	// version, or I/O failure mid-stream. It is terminal; no operation
	// retries or recovers partially.
	ErrProcessing = errors.New("processing error")
	// ErrNullArgument reports an unexpected nil argument.
	ErrNullArgument = errors.New("unexpected nil argument")
)

// CodeOf maps an error onto the taxonomy. A nil error is CodeOK; errors not
// produced by this package degrade to CodeProcessing.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrBadArgumentString):
		return CodeBadArgumentString
	case errors.Is(err, ErrOpenFileRead):
		return CodeOpenFileRead
	case errors.Is(err, ErrOpenFileWrite):
		return CodeOpenFileWrite
	case errors.Is(err, ErrBadJSONArgument):
		return CodeBadJSONArgument
	case errors.Is(err, ErrNullArgument):
		return CodeNullArgument
	}
	return CodeProcessing
}

// wrapProcessing tags err with ErrProcessing unless it already carries a
// taxonomy code.
func wrapProcessing(err error) error {
	if err == nil || CodeOf(err) != CodeProcessing || errors.Is(err, ErrProcessing) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrProcessing, err)
}
