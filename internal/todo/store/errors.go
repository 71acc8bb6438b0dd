package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"todolists/pkg/platform/sentinel"
)

// errCodeSizeOfNonArray is the server error raised when $size meets a field
// that is not an array.
const errCodeSizeOfNonArray = 17124

// classify maps a driver error onto the store's sentinel errors, keeping the
// driver error in the chain. op names the failed call for the message.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sentinel.ErrNotFound
	}
	if errors.Is(err, sentinel.ErrInvariantViolation) || errors.Is(err, sentinel.ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorCode(errCodeSizeOfNonArray) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrInvariantViolation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var selErr topology.ServerSelectionError
	return errors.As(err, &selErr)
}

// outcome labels an operation result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, sentinel.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, sentinel.ErrInvariantViolation):
		return "invariant_violation"
	default:
		return "error"
	}
}
