package storage

import "context"

// ObservedStore wraps a Store and calls onPut after every successful write.
type ObservedStore struct {
	Store
	onPut func(backend, name string)
}

// NewObservedStore wraps store with the onPut hook.
func NewObservedStore(store Store, onPut func(backend, name string)) *ObservedStore {
	return &ObservedStore{Store: store, onPut: onPut}
}

// Put writes through the wrapped store and reports the write.
func (s *ObservedStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	loc, err := s.Store.Put(ctx, name, data)
	if err != nil {
		return "", err
	}
	if s.onPut != nil {
		s.onPut(s.Backend(), name)
	}
	return loc, nil
}

var _ Store = (*ObservedStore)(nil)
