// Package store holds session state in a small key-value store.
//
// The analytical core never touches a Store. Commands read inputs through a
// Session, hand plain strings to the analyzer and write the resulting records
// back.
package store

import (
	"context"
	"fmt"

	"atsmatch/internal/errors"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Options selects and configures a Store backend.
type Options struct {
	Driver        string
	Path          string
	BusyTimeoutMs int
}

// Open returns the Store backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, opts.Path, opts.BusyTimeoutMs)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown store driver: %s", opts.Driver), nil)
	}
}

// Observer is notified after every store operation.
type Observer interface {
	RecordStoreOperation(ctx context.Context, operation string, success bool)
}

type observedStore struct {
	Store
	observer Observer
}

// WithObserver reports every Get, Set and Delete on s to o. A nil o returns s unchanged.
func WithObserver(s Store, o Observer) Store {
	if o == nil {
		return s
	}
	return &observedStore{Store: s, observer: o}
}

func (s *observedStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.Store.Get(ctx, key)
	s.observer.RecordStoreOperation(ctx, "get", err == nil)
	return value, ok, err
}

func (s *observedStore) Set(ctx context.Context, key, value string) error {
	err := s.Store.Set(ctx, key, value)
	s.observer.RecordStoreOperation(ctx, "set", err == nil)
	return err
}

func (s *observedStore) Delete(ctx context.Context, keys ...string) error {
	err := s.Store.Delete(ctx, keys...)
	s.observer.RecordStoreOperation(ctx, "delete", err == nil)
	return err
}
