package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/hupe1980/factormerge/model"
)

type payloadBuffer struct {
	buf []byte
	pos int
	err error
}

func newPayloadBuffer(b []byte) *payloadBuffer {
	return &payloadBuffer{buf: b}
}

func (p *payloadBuffer) writeUint64(v uint64) {
	if p.err != nil {
		return
	}
	p.buf = binary.LittleEndian.AppendUint64(p.buf, v)
}

func (p *payloadBuffer) writeUint32(v uint32) {
	if p.err != nil {
		return
	}
	p.buf = binary.LittleEndian.AppendUint32(p.buf, v)
}

func (p *payloadBuffer) writeBytes(b []byte) {
	if p.err != nil {
		return
	}
	if len(b) > math.MaxUint32 {
		p.err = fmt.Errorf("codec: section entry too long: %d", len(b))
		return
	}
	p.writeUint32(uint32(len(b)))
	p.buf = append(p.buf, b...)
}

func (p *payloadBuffer) writeVectors(section string, v model.Vectors) {
	if p.err != nil {
		return
	}
	dim, err := v.Dim(section)
	if err != nil {
		if len(v) > 0 {
			p.err = err
			return
		}
		dim = 0
	}

	p.writeUint64(uint64(len(v)))
	p.writeUint32(uint32(dim))
	for _, id := range v.IDs() {
		p.writeUint64(id)
		for _, f := range v[id] {
			p.writeUint32(math.Float32bits(f))
		}
	}
}

func (p *payloadBuffer) writeKnownItems(known map[uint64]*model.IDSet) {
	if p.err != nil {
		return
	}
	p.writeUint64(uint64(len(known)))
	for _, id := range slices.Sorted(maps.Keys(known)) {
		b, err := known[id].Bytes()
		if err != nil {
			p.err = err
			return
		}
		p.writeUint64(id)
		p.writeBytes(b)
	}
}

func (p *payloadBuffer) remaining() int {
	return len(p.buf) - p.pos
}

func (p *payloadBuffer) readUint64() uint64 {
	if p.err != nil {
		return 0
	}
	if p.remaining() < 8 {
		p.err = io.ErrUnexpectedEOF
		return 0
	}
	v := binary.LittleEndian.Uint64(p.buf[p.pos:])
	p.pos += 8
	return v
}

func (p *payloadBuffer) readUint32() uint32 {
	if p.err != nil {
		return 0
	}
	if p.remaining() < 4 {
		p.err = io.ErrUnexpectedEOF
		return 0
	}
	v := binary.LittleEndian.Uint32(p.buf[p.pos:])
	p.pos += 4
	return v
}

func (p *payloadBuffer) readBytes() []byte {
	l := p.readUint32()
	if p.err != nil {
		return nil
	}
	if uint64(p.remaining()) < uint64(l) {
		p.err = io.ErrUnexpectedEOF
		return nil
	}
	b := p.buf[p.pos : p.pos+int(l)]
	p.pos += int(l)
	return b
}

func (p *payloadBuffer) readVectors() model.Vectors {
	count := p.readUint64()
	dim := p.readUint32()
	if p.err != nil {
		return nil
	}

	entry := 8 + 4*uint64(dim)
	if count > uint64(p.remaining())/entry {
		p.err = fmt.Errorf("vector section claims %d entries of dim %d in %d bytes", count, dim, p.remaining())
		return nil
	}

	// One backing array for all vectors of the section.
	values := make([]float32, count*uint64(dim))
	v := make(model.Vectors, count)
	for i := range int(count) {
		id := p.readUint64()
		vec := values[i*int(dim) : (i+1)*int(dim) : (i+1)*int(dim)]
		for j := range vec {
			vec[j] = math.Float32frombits(p.readUint32())
		}
		if _, dup := v[id]; dup {
			p.err = fmt.Errorf("duplicate id %d", id)
			return nil
		}
		v[id] = vec
	}
	return v
}

func (p *payloadBuffer) readKnownItems() map[uint64]*model.IDSet {
	count := p.readUint64()
	if p.err != nil {
		return nil
	}
	if count > uint64(p.remaining())/12 {
		p.err = fmt.Errorf("known items section claims %d entries in %d bytes", count, p.remaining())
		return nil
	}

	known := make(map[uint64]*model.IDSet, count)
	for range count {
		id := p.readUint64()
		b := p.readBytes()
		if p.err != nil {
			return nil
		}
		set, err := model.ReadIDSet(b)
		if err != nil {
			p.err = fmt.Errorf("known items of %d: %w", id, err)
			return nil
		}
		if set.IsEmpty() {
			set = model.EmptyIDSet()
		}
		known[id] = set
	}
	return known
}
