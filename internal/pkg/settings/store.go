// Package settings keeps typed key-value namespaces in sync with their persistent backends
// and notifies subscribers about every value change.
package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrUnknownKey   = errors.New("unknown key")
	ErrType         = errors.New("type mismatch")
	ErrInvalidValue = errors.New("invalid value")
)

// Backend persists values of one schema. Load may omit keys, missing keys hold defaults.
type Backend interface {
	Load(ctx context.Context, schema Schema) (map[string]any, error)
	Save(ctx context.Context, key string, value any, values map[string]any) error
}

// Watcher is implemented by backends able to detect changes made by other processes.
// Watch blocks until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, changed func()) error
}

type Change struct {
	Schema string
	Key    string
	Value  any
}

type Handler func(Change)

type subscriber struct {
	key string // empty for every key
	fn  Handler
}

type Store struct {
	schema  Schema
	backend Backend
	log     *zap.Logger

	mu     sync.Mutex
	values map[string]any
	subs   map[int]subscriber
	nextID int
}

// Open loads values from backend. Failure here is fatal for the caller.
func Open(ctx context.Context, schema Schema, backend Backend, log *zap.Logger) (*Store, error) {
	s := &Store{
		schema:  schema,
		backend: backend,
		log:     log,
		values:  make(map[string]any),
		subs:    make(map[int]subscriber),
	}
	for _, k := range schema.Keys {
		s.values[k.Name] = k.Default
	}

	loaded, err := backend.Load(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("cannot load \"%s\" settings: %w", schema.ID, err)
	}
	for name, v := range loaded {
		k, ok := schema.Key(name)
		if !ok {
			log.Info(fmt.Sprintf("ignoring unknown key \"%s\"", name), zap.String("schema", schema.ID), logger.Debug)
			continue
		}
		nv, err := k.normalize(v)
		if err != nil {
			log.Info(fmt.Sprintf("ignoring stored value: %s", err), zap.String("schema", schema.ID), logger.Warning)
			continue
		}
		s.values[name] = nv
	}
	return s, nil
}

func (s *Store) Schema() Schema {
	return s.schema
}

func (s *Store) Value(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v, nil
}

func (s *Store) Bool(key string) bool {
	v, _ := s.Value(key)
	b, _ := v.(bool)
	return b
}

func (s *Store) String(key string) string {
	v, _ := s.Value(key)
	str, _ := v.(string)
	return str
}

func (s *Store) Int(key string) int {
	v, _ := s.Value(key)
	i, _ := v.(int)
	return i
}

func (s *Store) Strv(key string) []string {
	v, _ := s.Value(key)
	strv, _ := v.([]string)
	return append([]string(nil), strv...)
}

func (s *Store) SetBool(key string, value bool) error {
	return s.Set(key, value)
}

func (s *Store) SetString(key string, value string) error {
	return s.Set(key, value)
}

func (s *Store) SetInt(key string, value int) error {
	return s.Set(key, value)
}

// Set validates and persists value. Writing the current value again is a no-op,
// neither backend nor subscribers are involved.
func (s *Store) Set(key string, value any) error {
	k, ok := s.schema.Key(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	nv, err := k.normalize(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if reflect.DeepEqual(s.values[key], nv) {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = nv
	snapshot := make(map[string]any, len(s.values))
	for name, v := range s.values {
		snapshot[name] = v
	}
	s.mu.Unlock()

	s.log.Info("setting changed", zap.String("schema", s.schema.ID), zap.String("key", key),
		zap.Any("value", nv), logger.Debug)

	err = s.backend.Save(context.Background(), key, nv, snapshot)
	if err != nil {
		err = fmt.Errorf("cannot save \"%s\": %w", key, err)
	}
	s.notify([]Change{{Schema: s.schema.ID, Key: key, Value: nv}})
	return err
}

func (s *Store) Reset(key string) error {
	k, ok := s.schema.Key(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s.Set(key, k.Default)
}

// ResetAll restores defaults of every key, errors are joined.
func (s *Store) ResetAll() error {
	var errs []error
	for _, k := range s.schema.Keys {
		err := s.Reset(k.Name)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload re-reads backend and notifies about values changed by someone else.
func (s *Store) Reload(ctx context.Context) error {
	loaded, err := s.backend.Load(ctx, s.schema)
	if err != nil {
		return fmt.Errorf("cannot reload \"%s\" settings: %w", s.schema.ID, err)
	}

	var changes []Change
	s.mu.Lock()
	for _, k := range s.schema.Keys {
		nv := k.Default
		if v, ok := loaded[k.Name]; ok {
			nv, err = k.normalize(v)
			if err != nil {
				s.log.Info(fmt.Sprintf("ignoring stored value: %s", err), zap.String("schema", s.schema.ID), logger.Warning)
				continue
			}
		}
		if reflect.DeepEqual(s.values[k.Name], nv) {
			continue
		}
		s.values[k.Name] = nv
		changes = append(changes, Change{Schema: s.schema.ID, Key: k.Name, Value: nv})
	}
	s.mu.Unlock()

	if len(changes) > 0 {
		s.log.Info(fmt.Sprintf("%d settings changed externally", len(changes)), zap.String("schema", s.schema.ID), logger.Debug)
	}
	s.notify(changes)
	return nil
}

// Watch follows external changes until ctx is done, when backend supports it.
// Reloads go through dispatch, so subscribers can be kept on a single goroutine;
// nil dispatch reloads on the watching goroutine.
func (s *Store) Watch(ctx context.Context, dispatch func(fn func())) error {
	w, ok := s.backend.(Watcher)
	if !ok {
		return nil
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return w.Watch(ctx, func() {
		dispatch(func() {
			err := s.Reload(ctx)
			if err != nil {
				s.log.Info(err.Error(), zap.String("schema", s.schema.ID), logger.Warning)
			}
		})
	})
}

// Subscribe calls fn after every change of key, or of any key when key is empty.
// Handlers run on the goroutine which made the change.
func (s *Store) Subscribe(key string, fn Handler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = subscriber{key: key, fn: fn}
	return &Subscription{store: s, id: id}
}

func (s *Store) notify(changes []Change) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	var ids = make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var subs = make([]subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, c := range changes {
		for _, sub := range subs {
			if sub.key == "" || sub.key == c.Key {
				sub.fn(c)
			}
		}
	}
}

type Subscription struct {
	store *Store
	id    int
}

// Close stops delivery, closing twice is fine.
func (sub *Subscription) Close() {
	sub.store.mu.Lock()
	delete(sub.store.subs, sub.id)
	sub.store.mu.Unlock()
}
