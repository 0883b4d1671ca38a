package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema indicates required columns are absent from a dataset.
	ErrSchema = errors.New("domain: missing columns")
	// ErrNotFound indicates a track id is not present in the dataset.
	ErrNotFound = errors.New("domain: not found")
	// ErrInvalidArgument indicates a caller supplied an out-of-range value.
	ErrInvalidArgument = errors.New("domain: invalid argument")
	// ErrEmptyDataset indicates a dataset with no rows.
	ErrEmptyDataset = errors.New("domain: empty dataset")
	// ErrDuplicateTrack indicates a track id already present in a playlist.
	ErrDuplicateTrack = errors.New("domain: duplicate track")
)

// SchemaError lists the columns a dataset is missing.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 0 {
		return ErrSchema.Error()
	}
	return fmt.Sprintf("dataset missing columns: [%s]", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NotFoundError carries the track id that could not be resolved.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("track id %q not found in dataset", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
