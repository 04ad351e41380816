package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/hupe1980/factormerge/blobstore"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 256

// Store implements blobstore.BlobStore on a Redis server.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ blobstore.BlobStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTTL expires written blobs after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// NewStore creates a store whose keys are prefix + name.
func NewStore(client redis.UniversalClient, prefix string, opts ...Option) *Store {
	s := &Store{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient connects to addr and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Open fetches the whole value; later reads are served from memory.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("redis key %q: %w", s.key(name), blobstore.ErrNotFound)
		}
		return nil, err
	}
	return blobstore.NewBytesBlob(data), nil
}

// Create buffers writes and stores them with one SET on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return &writableBlob{ctx: ctx, store: s, name: name}, nil
}

// Put stores data with a single SET.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, s.key(name), data, s.ttl).Err()
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.key(name)).Err()
}

// List scans for keys starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapePattern(s.key(prefix)) + "*"

	var names []string
	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return sortedUnique(names), nil
}

// escapePattern quotes the glob metacharacters of a SCAN MATCH pattern.
func escapePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sortedUnique sorts names in place and drops duplicates; SCAN may return a
// key more than once.
func sortedUnique(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}

type writableBlob struct {
	ctx    context.Context
	store  *Store
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *writableBlob) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.buf.Write(p)
}

func (w *writableBlob) Close() error {
	if w.closed {
		return io.ErrClosedPipe
	}
	w.closed = true
	return w.store.Put(w.ctx, w.name, w.buf.Bytes())
}

func (w *writableBlob) Sync() error {
	return nil
}
