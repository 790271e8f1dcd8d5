// Package memory is a mutex-guarded in-process store.Store. It reproduces
// the atomic semantics of the Redis store (SetNX, Incr, CompareAndDel happen
// under one lock) so tests and single-node deployments behave identically.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Unrealaaaaaa/Niche-review/store"
)

type entry struct {
	val []byte
	exp time.Time // zero => no TTL
}

type Memory struct {
	mu     sync.Mutex
	keys   map[string]entry
	hashes map[string]map[string]string
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		keys:   make(map[string]entry),
		hashes: make(map[string]map[string]string),
	}
}

// live returns the entry at key, lazily expiring it. Callers hold mu.
func (s *Memory) live(key string) (entry, bool) {
	e, ok := s.keys[key]
	if !ok {
		return entry{}, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(s.keys, key)
		return entry{}, false
	}
	return e, true
}

func (s *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return nil, false, nil
	}
	return e.val, true, nil
}

func (s *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.keys[key] = entry{val: value, exp: exp}
	s.mu.Unlock()
	return nil
}

func (s *Memory) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key); ok {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.keys[key] = entry{val: []byte(value), exp: exp}
	return true, nil
}

func (s *Memory) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	delete(s.hashes, key)
	s.mu.Unlock()
	return nil
}

func (s *Memory) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	if e, ok := s.live(key); ok {
		v, err := strconv.ParseInt(string(e.val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("memory store: %q is not an integer: %w", key, err)
		}
		n = v
	}
	n++
	exp := s.keys[key].exp // keep any existing TTL
	s.keys[key] = entry{val: []byte(strconv.FormatInt(n, 10)), exp: exp}
	return n, nil
}

func (s *Memory) HSet(_ context.Context, key, field, value string) error {
	s.mu.Lock()
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	h[field] = value
	s.mu.Unlock()
	return nil
}

func (s *Memory) HGet(_ context.Context, key, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.hashes[key][field]
	return v, ok, nil
}

func (s *Memory) CompareAndDel(_ context.Context, key, expect string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok || string(e.val) != expect {
		return false, nil
	}
	delete(s.keys, key)
	return true, nil
}

func (s *Memory) Close(context.Context) error { return nil }
