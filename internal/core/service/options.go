package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidStatus     = errors.New("invalid order status")
)

// Options are shared by the engine services. The zero value is usable.
type Options struct {
	Logger *zap.Logger
	IDs    IDGenerator
	Now    func() time.Time

	// StrictValidation makes the engine re-check what callers are trusted
	// to validate: stock before cart growth, status membership before
	// updates.
	StrictValidation bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.IDs == nil {
		o.IDs = SequentialIDs{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
