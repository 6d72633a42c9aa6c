package core

import (
	"errors"
	"fmt"

	"github.com/edvin/routemanager/internal/graph"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ConflictReason names the uniqueness rule a request violated.
type ConflictReason string

const (
	ConflictDuplicateNameNamespace ConflictReason = "duplicate_name_namespace"
	ConflictDuplicateRD            ConflictReason = "duplicate_rd"
	ConflictDuplicatePrefix        ConflictReason = "duplicate_prefix"
)

// ConflictError matches ErrConflict.
type ConflictError struct {
	Reason  ConflictReason
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError matches ErrNotFound.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func vrfNotFound(namespace, name string) error {
	return &NotFoundError{Kind: "VRF", Key: namespace + "/" + name}
}

func duplicateNameNamespace(namespace, name string) error {
	return &ConflictError{
		Reason:  ConflictDuplicateNameNamespace,
		Message: fmt.Sprintf("VRF '%s' already exists in namespace '%s'", name, namespace),
	}
}

func duplicateRD(rd string) error {
	return &ConflictError{
		Reason:  ConflictDuplicateRD,
		Message: fmt.Sprintf("RD '%s' is already in use", rd),
	}
}

func duplicatePrefix() error {
	return &ConflictError{
		Reason:  ConflictDuplicatePrefix,
		Message: "Prefix already exists in this VRF",
	}
}

// storageErr tags a backend failure as ErrStorageUnavailable. Constraint
// violations and vanished nodes keep their graph identity instead, so
// callers can report them as conflicts or not-found.
func storageErr(op string, err error) error {
	if errors.Is(err, graph.ErrConstraint) || errors.Is(err, graph.ErrNodeNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
