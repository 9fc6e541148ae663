package st7789

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrOutOfBounds         = errors.New("st7789: out of display bounds")
	ErrInvalidScrollLayout = errors.New("st7789: scroll rows do not add up to the display height")
	ErrNotInitialized      = errors.New("st7789: display is not initialized")
	ErrHalted              = errors.New("st7789: display is halted")
	ErrImageSize           = errors.New("st7789: image data does not match image size")
	ErrInvalidRotation     = errors.New("st7789: invalid rotation")
	ErrInvalidSize         = errors.New("st7789: width and height must be positive")
)

// TransportError is a failure of the underlying bus or control lines. The
// controller state is unknown after a TransportError; the caller decides
// whether to reset and initialize again.
type TransportError struct {
	// Op is the controller operation that was in flight.
	Op  string
	Err error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("st7789: %s: %v", err.Op, err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}

// InitError is returned when the initialization sequence fails. The Dev is
// permanently unusable afterwards and must be constructed again.
type InitError struct {
	// Step of the initialization sequence that failed.
	Step string
	Err  error
}

func (err *InitError) Error() string {
	return fmt.Sprintf("st7789: init failed at %s: %v", err.Step, err.Err)
}

func (err *InitError) Unwrap() error {
	return err.Err
}

// transportError wraps err unless it already is a *TransportError.
func transportError(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

func outOfBounds(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrOutOfBounds}, args...)...)
}
