package prefs

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ByteOrder is the byte order of the encoded record. Every host/device pair
// the compute backends drive is little-endian.
var ByteOrder = binary.LittleEndian

// AppendBinary appends the 16-byte encoding of p to b.
func (p Prefs) AppendBinary(b []byte) ([]byte, error) {
	b = ByteOrder.AppendUint32(b, math.Float32bits(p.Timestep))
	b = ByteOrder.AppendUint32(b, math.Float32bits(p.Damping))
	b = ByteOrder.AppendUint32(b, math.Float32bits(p.SofteningSqr))
	b = ByteOrder.AppendUint32(b, p.Particles)
	return b, nil
}

// MarshalBinary returns the 16-byte encoding of p.
func (p Prefs) MarshalBinary() ([]byte, error) {
	return p.AppendBinary(make([]byte, 0, Size))
}

// Put writes the encoding of p into the first Size bytes of dst, which is
// typically a device parameter buffer. It panics if dst is too short.
func (p Prefs) Put(dst []byte) {
	_ = dst[Size-1]
	ByteOrder.PutUint32(dst[OffsetTimestep:], math.Float32bits(p.Timestep))
	ByteOrder.PutUint32(dst[OffsetDamping:], math.Float32bits(p.Damping))
	ByteOrder.PutUint32(dst[OffsetSofteningSqr:], math.Float32bits(p.SofteningSqr))
	ByteOrder.PutUint32(dst[OffsetParticles:], p.Particles)
}

// UnmarshalBinary decodes a 16-byte record into p.
func (p *Prefs) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: got %d", ErrShortBuffer, len(data))
	}
	p.Timestep = math.Float32frombits(ByteOrder.Uint32(data[OffsetTimestep:]))
	p.Damping = math.Float32frombits(ByteOrder.Uint32(data[OffsetDamping:]))
	p.SofteningSqr = math.Float32frombits(ByteOrder.Uint32(data[OffsetSofteningSqr:]))
	p.Particles = ByteOrder.Uint32(data[OffsetParticles:])
	return nil
}

// Encode writes the 16-byte encoding of p to w.
func (p Prefs) Encode(w io.Writer) error {
	var buf [Size]byte
	p.Put(buf[:])
	_, err := w.Write(buf[:])
	return err
}

// Decode reads one 16-byte record from r.
func Decode(r io.Reader) (Prefs, error) {
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Prefs{}, fmt.Errorf("%w: %v", ErrShortBuffer, err)
		}
		return Prefs{}, err
	}
	var p Prefs
	if err := p.UnmarshalBinary(buf[:]); err != nil {
		return Prefs{}, err
	}
	return p, nil
}
