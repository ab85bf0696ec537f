package resonance

import (
	"errors"
	"fmt"
	"math"

	"github.com/primefold/resonance/snapshot"
)

// MaxN is the largest searchable input.
const MaxN uint64 = math.MaxUint64

var (
	// ErrNoFactorFound is returned when a search exhausts its budget
	// without locating a divisor. This is the expected outcome for
	// primes and, for composites, an invitation to retry with a larger
	// budget or better hints rather than a failure.
	ErrNoFactorFound = errors.New("no factor found")

	// ErrInvalidN is returned for inputs outside the searchable domain.
	ErrInvalidN = errors.New("invalid n")

	// ErrClosed is returned when an engine is used after Close.
	ErrClosed = errors.New("engine closed")

	// ErrNoSnapshotStore is returned by SaveMemory and LoadMemory when
	// the engine was built without a snapshot store.
	ErrNoSnapshotStore = errors.New("no snapshot store configured")
)

// OutOfRangeError reports an input outside [2, MaxN].
//
// Errors returned by the engine match both errors.As with this type and
// errors.Is with ErrInvalidN.
type OutOfRangeError struct {
	N   uint64
	Max uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("n %d outside [2, %d]", e.N, e.Max)
}

// translateError maps lower-layer errors onto the public taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var oor *OutOfRangeError
	if errors.As(err, &oor) {
		return fmt.Errorf("%w: %w", ErrInvalidN, err)
	}

	var ce *snapshot.ChecksumError
	if errors.As(err, &ce) {
		return fmt.Errorf("corrupt snapshot: %w", err)
	}

	return err
}
