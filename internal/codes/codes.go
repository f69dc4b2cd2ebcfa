package codes

import (
	"errors"
	"fmt"
)

// Process exit codes
const (
	OK      = 0
	General = 1
	Usage   = 2
	Config  = 3
	Stage   = 4
	Verify  = 5
	Upload  = 6
)

// ErrorCodes maps fsstage exit codes to their descriptions
var ErrorCodes = map[int]string{
	OK:      "Success",
	General: "General failure",
	Usage:   "Invalid command line usage",
	Config:  "Invalid configuration",
	Stage:   "Staging failed",
	Verify:  "Staged output does not match the source",
	Upload:  "PlatformIO upload failed",
}

// IsSuccess returns true if the exit code indicates success
func IsSuccess(code int) bool {
	return code == OK
}

// GetErrorMessage returns the error message for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}

// Error carries the exit code a command failed with
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return GetErrorMessage(e.Code)
	}

	return fmt.Sprintf("%s: %v", GetErrorMessage(e.Code), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches code to err. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Code: code, Err: err}
}

// ExitCode returns the code carried by err, General for any other error
// and OK for nil
func ExitCode(err error) int {
	if err == nil {
		return OK
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}

	return General
}
