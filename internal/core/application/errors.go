package application

import (
	"errors"
	"fmt"

	"github.com/photonwallet/photon/internal/core/domain"
)

var (
	ErrEngineNotInitialized = errors.New("wallet not connected")
	ErrInvalidDestination   = errors.New("invalid payment destination")
	ErrAddressUnavailable   = domain.ErrAddressUnavailable
	ErrFlowStale            = errors.New("flow was reset")
)

// PreparationError wraps failures that happen before funds move. The flow
// stays on its current step and the user may retry.
type PreparationError struct {
	Err error
}

func (e *PreparationError) Error() string {
	return fmt.Sprintf("failed to prepare payment: %s", errMessage(e.Err))
}

func (e *PreparationError) Unwrap() error { return e.Err }

// ExecutionError wraps failures after the user confirmed. Funds may or may
// not have moved; the flow lands on the result step.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("payment failed: %s", errMessage(e.Err))
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func errMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "unknown error"
	}
	return err.Error()
}
