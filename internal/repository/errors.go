package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique index rejected the write.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrSchemaViolation indicates the collection validator rejected the write.
	ErrSchemaViolation = errors.New("repository: document failed validation")
)

const documentValidationFailure = 121

// writeError keeps the driver message as the error text while matching the
// sentinel in errors.Is.
type writeError struct {
	kind  error
	cause error
}

func (e *writeError) Error() string {
	return e.cause.Error()
}

func (e *writeError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// mapWriteError tags driver write errors with the sentinels above, keeping
// the server message in the chain.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return &writeError{kind: ErrDuplicate, cause: err}
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorCode(documentValidationFailure) {
		return &writeError{kind: ErrSchemaViolation, cause: err}
	}
	return err
}
