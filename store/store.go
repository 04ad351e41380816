package store

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/factormerge/blobstore"
	"github.com/hupe1980/factormerge/codec"
	"github.com/hupe1980/factormerge/model"
	"github.com/hupe1980/factormerge/resource"
)

// ModelStore reads and writes models by name.
type ModelStore interface {
	Load(ctx context.Context, name string) (*model.FactorModel, error)
	Save(ctx context.Context, m *model.FactorModel, name string) error
}

// BlobModelStore is a ModelStore on top of a BlobStore.
type BlobModelStore struct {
	blobs      blobstore.BlobStore
	codec      codec.Codec
	controller *resource.Controller
	logger     *slog.Logger
}

var _ ModelStore = (*BlobModelStore)(nil)

// Option configures a BlobModelStore.
type Option func(*BlobModelStore)

// WithCodec sets the codec used by Save. Load always detects the format.
func WithCodec(c codec.Codec) Option {
	return func(s *BlobModelStore) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithController throttles reads and writes by the controller's IO limit.
func WithController(c *resource.Controller) Option {
	return func(s *BlobModelStore) {
		s.controller = c
	}
}

// WithLogger sets the logger. If nil, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(s *BlobModelStore) {
		s.logger = l
	}
}

// New creates a BlobModelStore.
func New(blobs blobstore.BlobStore, opts ...Option) *BlobModelStore {
	s := &BlobModelStore{
		blobs: blobs,
		codec: codec.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Codec returns the codec used for writing.
func (s *BlobModelStore) Codec() codec.Codec {
	return s.codec
}

// Load reads and decodes the named model. Errors are *StoreReadError.
func (s *BlobModelStore) Load(ctx context.Context, name string) (*model.FactorModel, error) {
	start := time.Now()

	data, err := s.read(ctx, name)
	if err != nil {
		return nil, readError(name, err)
	}

	m, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, readError(name, err)
	}

	s.logger.DebugContext(ctx, "model loaded",
		"name", name,
		"bytes", len(data),
		"rows", len(m.X),
		"columns", len(m.Y),
		"duration", time.Since(start),
	)
	return m, nil
}

// Save encodes m completely in memory and then writes it with one atomic
// Put, so a failed save leaves no partial model under name. With an IO limit
// the Put waits until the limit admits the whole blob. Errors are
// *StoreWriteError.
func (s *BlobModelStore) Save(ctx context.Context, m *model.FactorModel, name string) error {
	start := time.Now()

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, m); err != nil {
		return &StoreWriteError{Name: name, Err: err}
	}

	if err := s.controller.AcquireIO(ctx, buf.Len()); err != nil {
		return &StoreWriteError{Name: name, Err: err}
	}
	if err := s.blobs.Put(ctx, name, buf.Bytes()); err != nil {
		return &StoreWriteError{Name: name, Err: err}
	}

	s.logger.DebugContext(ctx, "model saved",
		"name", name,
		"codec", s.codec.Name(),
		"bytes", buf.Len(),
		"duration", time.Since(start),
	)
	return nil
}

// read returns the blob content. Without an IO limit mapped blobs are copied
// directly; otherwise the blob is streamed through the controller's limiter.
func (s *BlobModelStore) read(ctx context.Context, name string) ([]byte, error) {
	if s.controller.Config().IOLimitBytesPerSec <= 0 {
		return blobstore.ReadAll(ctx, s.blobs, name)
	}

	b, err := s.blobs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if b.Size() == 0 {
		return []byte{}, nil
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(resource.NewRateLimitedReader(ctx, rc, s.controller))
}
