// Package location turns command-line model locations into model stores.
//
// Accepted forms:
//
//	models/a.fm                  local file, relative or absolute
//	file:///srv/models/a.fm      local file
//	s3://bucket/path/a.fm        Amazon S3 or a compatible endpoint
//	minio://bucket/path/a.fm     MinIO
//	redis://host:6379/path/a.fm  Redis key "path/a.fm"; host may be empty
//	mem://a                      process-local memory, for tests
package location

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme identifies a storage backend.
type Scheme string

const (
	SchemeFile   Scheme = "file"
	SchemeS3     Scheme = "s3"
	SchemeMinIO  Scheme = "minio"
	SchemeRedis  Scheme = "redis"
	SchemeMemory Scheme = "mem"
)

// ErrInvalid is returned for locations that cannot be parsed.
var ErrInvalid = errors.New("invalid model location")

// Location is a parsed model location.
type Location struct {
	Scheme Scheme
	// Host is the bucket for s3 and minio, the server address for redis,
	// and the directory for file.
	Host string
	// Name is the model name inside the store.
	Name string
}

func (l Location) String() string {
	switch l.Scheme {
	case SchemeFile:
		return filepath.Join(l.Host, l.Name)
	default:
		return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Host, l.Name)
	}
}

// Parse parses raw. Strings without "://" are file paths.
func Parse(raw string) (Location, error) {
	if strings.TrimSpace(raw) == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalid)
	}
	if !strings.Contains(raw, "://") {
		return fileLocation(raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return Location{}, fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalid, raw)
	}

	name := strings.TrimPrefix(u.Path, "/")
	switch Scheme(u.Scheme) {
	case SchemeFile:
		if u.Host != "" && u.Host != "localhost" {
			return Location{}, fmt.Errorf("%w: remote file host %q", ErrInvalid, u.Host)
		}
		return fileLocation(u.Path)
	case SchemeS3, SchemeMinIO:
		if u.Host == "" {
			return Location{}, fmt.Errorf("%w: %q has no bucket", ErrInvalid, raw)
		}
		if name == "" || strings.HasSuffix(name, "/") {
			return Location{}, fmt.Errorf("%w: %q has no object key", ErrInvalid, raw)
		}
		return Location{Scheme: Scheme(u.Scheme), Host: u.Host, Name: name}, nil
	case SchemeRedis:
		if name == "" {
			return Location{}, fmt.Errorf("%w: %q has no key", ErrInvalid, raw)
		}
		return Location{Scheme: SchemeRedis, Host: u.Host, Name: name}, nil
	case SchemeMemory:
		name = strings.TrimPrefix(raw, "mem://")
		if name == "" {
			return Location{}, fmt.Errorf("%w: %q has no name", ErrInvalid, raw)
		}
		return Location{Scheme: SchemeMemory, Name: name}, nil
	default:
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalid, u.Scheme)
	}
}

func fileLocation(path string) (Location, error) {
	if path == "" || strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return Location{}, fmt.Errorf("%w: %q is a directory", ErrInvalid, path)
	}
	path = filepath.Clean(path)
	return Location{Scheme: SchemeFile, Host: filepath.Dir(path), Name: filepath.Base(path)}, nil
}
