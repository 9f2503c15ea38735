package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is a source of raw configuration values
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed is a Config whose values have been converted to T
type Typed[T any] interface {
	// Get returns the latest value, falling back to the last known or default
	// value on error
	Get(ctx context.Context) T

	// GetSafe is Get, but also returns any error pulling or converting the value
	GetSafe(ctx context.Context) (T, error)

	Shutdown()
}

type (
	Bool     = Typed[bool]
	Uint64   = Typed[uint64]
	Float64  = Typed[float64]
	Duration = Typed[time.Duration]
)
