package codec

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/factormerge/model"
)

const (
	jsonFormat  = "factormerge"
	jsonVersion = 1
)

// JSON is a self-describing JSON model format backed by
// github.com/goccy/go-json:
//
//	{"format":"factormerge","version":1,
//	 "x":{"<id>":[...]}, "y":{"<id>":[...]},
//	 "known_items":{"<id>":[<id>,...]}}
//
// It is meant for inspection and interchange; Binary is smaller and faster.
type JSON struct{}

type jsonModel struct {
	Format     string               `json:"format"`
	Version    int                  `json:"version"`
	X          map[uint64][]float32 `json:"x"`
	Y          map[uint64][]float32 `json:"y"`
	KnownItems map[uint64][]uint64  `json:"known_items"`
}

// Name returns "json".
func (JSON) Name() string { return "json" }

// Encode writes m to w as a single JSON document.
func (JSON) Encode(w io.Writer, m *model.FactorModel) error {
	if m == nil {
		return fmt.Errorf("codec: %w", model.ErrEmptyModel)
	}

	doc := jsonModel{
		Format:     jsonFormat,
		Version:    jsonVersion,
		X:          m.X,
		Y:          m.Y,
		KnownItems: make(map[uint64][]uint64, len(m.KnownItems)),
	}
	for id, set := range m.KnownItems {
		ids := set.IDs()
		if ids == nil {
			ids = []uint64{}
		}
		doc.KnownItems[id] = ids
	}

	return gojson.NewEncoder(w).Encode(doc)
}

// Decode reads a model from r.
func (JSON) Decode(r io.Reader) (*model.FactorModel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnknownFormat)
	}

	var doc jsonModel
	if err := gojson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if doc.Format != jsonFormat {
		return nil, fmt.Errorf("%w: json format %q", ErrUnknownFormat, doc.Format)
	}
	if doc.Version != jsonVersion {
		return nil, fmt.Errorf("%w: json version %d", ErrUnsupportedVersion, doc.Version)
	}

	known := make(map[uint64]*model.IDSet, len(doc.KnownItems))
	for id, ids := range doc.KnownItems {
		if len(ids) == 0 {
			known[id] = model.EmptyIDSet()
			continue
		}
		known[id] = model.NewIDSet(ids...)
	}

	x, y := model.Vectors(doc.X), model.Vectors(doc.Y)
	if x == nil {
		x = model.Vectors{}
	}
	if y == nil {
		y = model.Vectors{}
	}
	return model.New(x, y, known), nil
}
