package prefs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"unsafe"
)

func TestLayout(t *testing.T) {
	var p Prefs
	if got := unsafe.Sizeof(p); got != Size {
		t.Fatalf("sizeof = %d, want %d", got, Size)
	}

	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"timestep", unsafe.Offsetof(p.Timestep), OffsetTimestep},
		{"damping", unsafe.Offsetof(p.Damping), OffsetDamping},
		{"softeningSqr", unsafe.Offsetof(p.SofteningSqr), OffsetSofteningSqr},
		{"particles", unsafe.Offsetof(p.Particles), OffsetParticles},
	}
	for _, o := range offsets {
		if o.got != o.want {
			t.Errorf("offset of %s = %d, want %d", o.name, o.got, o.want)
		}
	}
}

func TestMarshalExample(t *testing.T) {
	p := Prefs{Timestep: 0.016, Damping: 0.999, SofteningSqr: 1.0, Particles: 1024}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if len(data) != Size {
		t.Fatalf("encoded %d bytes, want %d", len(data), Size)
	}

	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])); got != float32(0.016) {
		t.Errorf("bytes 0-3 = %v, want 0.016", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])); got != float32(0.999) {
		t.Errorf("bytes 4-7 = %v, want 0.999", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[8:12])); got != 1.0 {
		t.Errorf("bytes 8-11 = %v, want 1.0", got)
	}
	if got := binary.LittleEndian.Uint32(data[12:16]); got != 1024 {
		t.Errorf("bytes 12-15 = %d, want 1024", got)
	}
}

func TestMarshalMatchesMemoryLayout(t *testing.T) {
	p := Prefs{Timestep: 0.5, Damping: 0.25, SofteningSqr: 2, Particles: 7}

	// encoding/binary walks fields in declaration order, skipping blank ones.
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, p); err != nil {
		t.Fatalf("binary.Write failed: %v", err)
	}

	data, _ := p.MarshalBinary()
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("MarshalBinary = %x, binary.Write = %x", data, buf.Bytes())
	}
}

func TestRoundTrip(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))

	tests := []struct {
		name string
		p    Prefs
	}{
		{"default", Default()},
		{"zero", Prefs{}},
		{"example", Prefs{Timestep: 0.016, Damping: 0.999, SofteningSqr: 1.0, Particles: 1024}},
		{"extremes", Prefs{Timestep: math.MaxFloat32, Damping: negZero, SofteningSqr: math.SmallestNonzeroFloat32, Particles: math.MaxUint32}},
		{"negative damping", Prefs{Timestep: 1e-6, Damping: -3.5, SofteningSqr: 0, Particles: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.p.MarshalBinary()
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			var got Prefs
			if err := got.UnmarshalBinary(data); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			if math.Float32bits(got.Timestep) != math.Float32bits(tt.p.Timestep) ||
				math.Float32bits(got.Damping) != math.Float32bits(tt.p.Damping) ||
				math.Float32bits(got.SofteningSqr) != math.Float32bits(tt.p.SofteningSqr) ||
				got.Particles != tt.p.Particles {
				t.Errorf("round trip = %v, want %v", got, tt.p)
			}
		})
	}
}

func TestRoundTripNaN(t *testing.T) {
	nan := math.Float32frombits(0x7fc00001)
	p := Prefs{Timestep: nan, Damping: 1, SofteningSqr: 1, Particles: 2}

	data, _ := p.MarshalBinary()
	var got Prefs
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if math.Float32bits(got.Timestep) != 0x7fc00001 {
		t.Errorf("NaN payload lost: %#x", math.Float32bits(got.Timestep))
	}
}

func TestUnmarshalWrongLength(t *testing.T) {
	for _, n := range []int{0, 4, 15, 17, 32} {
		var p Prefs
		err := p.UnmarshalBinary(make([]byte, n))
		if !errors.Is(err, ErrShortBuffer) {
			t.Errorf("len %d: expected ErrShortBuffer, got %v", n, err)
		}
	}
}

func TestAppendBinary(t *testing.T) {
	a := Prefs{Timestep: 1, Damping: 1, SofteningSqr: 1, Particles: 1}
	b := Prefs{Timestep: 2, Damping: 2, SofteningSqr: 2, Particles: 2}

	buf, _ := a.AppendBinary([]byte{0xff})
	buf, _ = b.AppendBinary(buf)
	if len(buf) != 1+2*Size {
		t.Fatalf("len = %d, want %d", len(buf), 1+2*Size)
	}

	var got Prefs
	if err := got.UnmarshalBinary(buf[1+Size:]); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got != b {
		t.Errorf("second record = %v, want %v", got, b)
	}
}

func TestPut(t *testing.T) {
	p := Prefs{Timestep: 0.016, Damping: 0.999, SofteningSqr: 1.0, Particles: 1024}
	dst := make([]byte, 64)
	p.Put(dst)

	want, _ := p.MarshalBinary()
	if !bytes.Equal(dst[:Size], want) {
		t.Errorf("Put wrote %x, want %x", dst[:Size], want)
	}
	for _, b := range dst[Size:] {
		if b != 0 {
			t.Fatal("Put wrote past the record")
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	p := Prefs{Timestep: 0.01, Damping: 0.5, SofteningSqr: 0.25, Particles: 4096}

	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if buf.Len() != Size {
		t.Fatalf("encoded %d bytes, want %d", buf.Len(), Size)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != p {
		t.Errorf("decoded %v, want %v", got, p)
	}

	_, err = Decode(bytes.NewReader(make([]byte, 10)))
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer on truncated input, got %v", err)
	}
}

func TestFromSoftening(t *testing.T) {
	p := FromSoftening(0.016, 1.0, 0.5, 2048)
	if p.SofteningSqr != 0.25 {
		t.Errorf("softeningSqr = %v, want 0.25", p.SofteningSqr)
	}
	if p.Softening() != 0.5 {
		t.Errorf("softening = %v, want 0.5", p.Softening())
	}
	if p.Particles != 2048 {
		t.Errorf("particles = %d, want 2048", p.Particles)
	}
}

func TestDefault(t *testing.T) {
	p := Default()
	if p.Timestep != 0.016 || p.Damping != 1.0 || p.SofteningSqr != 1.0 || p.Particles != 8192 {
		t.Errorf("unexpected default %v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default should validate: %v", err)
	}
}
