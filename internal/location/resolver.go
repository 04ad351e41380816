package location

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hupe1980/factormerge/blobstore"
	"github.com/hupe1980/factormerge/blobstore/minio"
	redisstore "github.com/hupe1980/factormerge/blobstore/redis"
	"github.com/hupe1980/factormerge/blobstore/s3"
	"github.com/hupe1980/factormerge/codec"
	"github.com/hupe1980/factormerge/config"
	"github.com/hupe1980/factormerge/resource"
	"github.com/hupe1980/factormerge/store"
	goredis "github.com/redis/go-redis/v9"
)

// Resolver builds model stores for locations. Remote clients are created on
// first use and shared.
type Resolver struct {
	cfg        *config.Config
	codec      codec.Codec
	controller *resource.Controller
	logger     *slog.Logger
	memory     *blobstore.MemoryStore

	mu           sync.Mutex
	s3Client     s3.Client
	redisClients map[string]*goredis.Client
}

// NewResolver creates a Resolver. cfg supplies backend credentials and the
// output codec; controller and logger may be nil.
func NewResolver(cfg *config.Config, controller *resource.Controller, logger *slog.Logger) (*Resolver, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c, ok := codec.ByName(cfg.Store.CodecName())
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", cfg.Store.CodecName())
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		cfg:          cfg,
		codec:        c,
		controller:   controller,
		logger:       logger,
		memory:       blobstore.NewMemoryStore(),
		redisClients: map[string]*goredis.Client{},
	}, nil
}

// Memory returns the store behind mem:// locations.
func (r *Resolver) Memory() *blobstore.MemoryStore {
	return r.memory
}

// Resolve parses raw and returns the model store and the name inside it.
func (r *Resolver) Resolve(ctx context.Context, raw string) (store.ModelStore, string, error) {
	loc, err := Parse(raw)
	if err != nil {
		return nil, "", err
	}

	blobs, err := r.blobStore(ctx, loc)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", loc, err)
	}

	ms := store.New(blobs,
		store.WithCodec(r.codec),
		store.WithController(r.controller),
		store.WithLogger(r.logger.With("location", loc.String())),
	)
	return ms, loc.Name, nil
}

func (r *Resolver) blobStore(ctx context.Context, loc Location) (blobstore.BlobStore, error) {
	switch loc.Scheme {
	case SchemeFile:
		return blobstore.NewLocalStore(loc.Host), nil
	case SchemeMemory:
		return r.memory, nil
	case SchemeS3:
		client, err := r.s3(ctx)
		if err != nil {
			return nil, err
		}
		return s3.NewStore(client, loc.Host, "", s3.WithUploadConfig(s3.UploadConfig{
			PartSize:       r.cfg.S3.PartSize,
			Concurrency:    r.cfg.S3.Concurrency,
			EnableChecksum: r.cfg.S3.Checksum,
		})), nil
	case SchemeMinIO:
		client, err := minio.NewClient(minio.ClientConfig{
			Endpoint:        r.cfg.MinIO.Endpoint,
			AccessKeyID:     r.cfg.MinIO.AccessKeyID,
			SecretAccessKey: r.cfg.MinIO.SecretAccessKey,
			Region:          r.cfg.MinIO.Region,
			Secure:          r.cfg.MinIO.Secure,
		})
		if err != nil {
			return nil, err
		}
		return minio.NewStore(client, loc.Host, ""), nil
	case SchemeRedis:
		client, err := r.redis(ctx, loc.Host)
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(client, "", redisstore.WithTTL(r.cfg.Redis.TTL)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalid, loc.Scheme)
	}
}

func (r *Resolver) s3(ctx context.Context) (s3.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.s3Client != nil {
		return r.s3Client, nil
	}
	client, err := s3.NewClient(ctx, s3.ClientConfig{
		Region:          r.cfg.S3.Region,
		Endpoint:        r.cfg.S3.Endpoint,
		UsePathStyle:    r.cfg.S3.UsePathStyle,
		AccessKeyID:     r.cfg.S3.AccessKeyID,
		SecretAccessKey: r.cfg.S3.SecretAccessKey,
		SessionToken:    r.cfg.S3.SessionToken,
	})
	if err != nil {
		return nil, err
	}
	r.s3Client = client
	return client, nil
}

func (r *Resolver) redis(ctx context.Context, addr string) (*goredis.Client, error) {
	if addr == "" {
		addr = r.cfg.Redis.Addr
	}
	if addr == "" {
		return nil, fmt.Errorf("%w: redis location without host and no redis.addr configured", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.redisClients[addr]; ok {
		return c, nil
	}
	c, err := redisstore.NewClient(ctx, addr, r.cfg.Redis.Password, r.cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	r.redisClients[addr] = c
	return c, nil
}

// Close releases remote clients.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for addr, c := range r.redisClients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.redisClients, addr)
	}
	return firstErr
}
