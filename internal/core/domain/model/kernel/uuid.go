package kernel

import (
	"fmt"
	"math/big"

	"radiology/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	// dicomUUIDRoot is the registered arc for UIDs derived from a UUID (ISO/IEC 9834-8).
	dicomUUIDRoot = "2.25"
	// dicomUIDMaxLength is the maximum length of a DICOM unique identifier.
	dicomUIDMaxLength = 64
)

// ErrUUIDIsNotConstructed indicates that a UUID was not properly initialized through one of the constructor functions.
// This error is returned when validating a zero-value UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID is a value object that represents a universally unique identifier.
// It wraps the github.com/google/uuid implementation and is the identity of every
// order, encounter, study and report in the radiology domain.
//
// The zero value of UUID is invalid and must be constructed using one of the provided
// factory functions: NewUUID, UUIDFromString, or UUIDFromBytes. Aggregates that are
// not yet persisted carry a zero UUID, which is how "new" is told apart from "existing".
//
// UUID is immutable and thread-safe, making it suitable for concurrent use.
//
// Example usage:
//
//	id := kernel.NewUUID()
//
//	id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
//	if err != nil {
//	    // handle error
//	}
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a new random UUID (version 4).
//
// Example:
//
//	studyID := kernel.NewUUID()
//	fmt.Println(studyID.String()) // e.g., "550e8400-e29b-41d4-a716-446655440000"
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// UUIDFromString parses a UUID from its string representation.
// It accepts standard UUID formats including:
//   - "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
//   - "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"
//   - "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8"
//
// Returns an error if the string is not a valid UUID format. It is used when
// reconstructing aggregates from persistence and when parsing path parameters.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	return UUID{id: id}, nil
}

// UUIDFromBytes creates a UUID from a 16-byte slice.
// Returns an error if the byte slice is not valid for UUID construction
// or represents the nil UUID.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}

	return newID, nil
}

// String returns the standard string representation of the UUID.
// For a zero value UUID, this returns "00000000-0000-0000-0000-000000000000".
func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying uuid.UUID value.
// The result is a copy; modifying it does not affect the receiver.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual compares two UUIDs for equality.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// IsZero reports whether the UUID is the zero value, i.e. the entity holding it
// has not been assigned an identity yet.
func (u UUID) IsZero() bool {
	return u.id == uuid.Nil
}

// Validate checks if the UUID is properly constructed.
// Returns ErrUUIDIsNotConstructed if the UUID is a zero value (nil UUID).
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

// DICOMUID derives a DICOM unique identifier from the UUID by appending its
// 128-bit unsigned decimal value to root. An empty root selects the "2.25" arc,
// which is valid without any organisational registration.
//
// Returns an out-of-range error if the result would exceed 64 characters and a
// required error if the UUID is a zero value.
//
// Example:
//
//	uid, _ := id.DICOMUID("")           // "2.25.113059749145936325402354257176981405696"
//	uid, _ = id.DICOMUID("1.2.826.0.1") // "1.2.826.0.1.113059749145936325402354257176981405696"
func (u UUID) DICOMUID(root string) (string, error) {
	if err := u.Validate(); err != nil {
		return "", err
	}
	if root == "" {
		root = dicomUUIDRoot
	}

	n := new(big.Int).SetBytes(u.id[:])
	uid := root + "." + n.String()
	if len(uid) > dicomUIDMaxLength {
		return "", errs.NewValueIsOutOfRangeError("uid length", len(uid), 1, dicomUIDMaxLength)
	}
	return uid, nil
}
