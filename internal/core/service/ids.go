package service

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/google/uuid"
)

type IDGenerator interface {
	// NextID returns an id not present in existing.
	NextID(existing iter.Seq[string]) string
}

// SequentialIDs issues decimal ids one above the largest numeric id in use.
// With no deletions this is count+1; after a deletion it still never reuses
// a live id. Callers hold the collection lock.
type SequentialIDs struct{}

func (SequentialIDs) NextID(existing iter.Seq[string]) string {
	var max int64
	for id := range existing {
		n, err := strconv.ParseInt(id, 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}

type UUIDIDs struct{}

func (UUIDIDs) NextID(iter.Seq[string]) string {
	return uuid.NewString()
}

// NewIDGenerator maps a configured strategy name to a generator.
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case "", "sequential":
		return SequentialIDs{}, nil
	case "uuid":
		return UUIDIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
