package idstore

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func int64Codec() Codec[int64] {
	return Codec[int64]{
		Encode: func(w io.Writer, v int64) error {
			return binary.Write(w, binary.LittleEndian, v)
		},
		Decode: func(r io.Reader) (int64, error) {
			var v int64
			err := binary.Read(r, binary.LittleEndian, &v)
			return v, err
		},
	}
}

func TestInsertGet(t *testing.T) {
	s := New[int64]()
	s.Insert(42, 100)
	s.Insert(1<<40, 200)

	v, ok := s.Get(42)
	if !ok || v != 100 {
		t.Fatalf("Get(42) = %v,%v want 100,true", v, ok)
	}
	v, ok = s.Get(1 << 40)
	if !ok || v != 200 {
		t.Fatalf("Get(1<<40) = %v,%v want 200,true", v, ok)
	}
	if _, ok := s.Get(999); ok {
		t.Fatal("Get(999) should miss")
	}
	if s.Size() != 2 {
		t.Fatalf("Size() = %d want 2", s.Size())
	}
}

func TestCounterSaturates(t *testing.T) {
	s := New[int64]()
	for i := 0; i < 70000; i++ {
		s.IncrementCounter(7)
	}
	if c := s.Counter(7); c != 0xFFFF {
		t.Fatalf("counter should saturate at 65535, got %d", c)
	}
	if c := s.Counter(8); c != 0 {
		t.Fatalf("unreferenced id counter should be 0, got %d", c)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New[int64]()
	ids := []int64{1, 2, 3, 1000, 1 << 20, 1 << 40, 1<<63 - 1}
	for i, id := range ids {
		s.Insert(uint64(id), int64(i))
		s.IncrementCounter(uint64(id))
	}

	var buf bytes.Buffer
	if err := s.WriteTo(&buf, int64Codec()); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := ReadFrom[int64](&buf, int64Codec())
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if loaded.Size() != s.Size() {
		t.Fatalf("size mismatch: %d vs %d", loaded.Size(), s.Size())
	}
	for i, id := range ids {
		v, ok := loaded.Get(uint64(id))
		if !ok || v != int64(i) {
			t.Fatalf("Get(%d) after round-trip = %v,%v want %d,true", id, v, ok, i)
		}
		if c := loaded.Counter(uint64(id)); c != 1 {
			t.Fatalf("Counter(%d) after round-trip = %d want 1", id, c)
		}
	}
}

func TestForEachOrder(t *testing.T) {
	s := New[int64]()
	s.Insert(5, 50)
	s.Insert(3, 30)
	s.Insert(9, 90)

	var seen []uint64
	s.ForEach(func(id uint64, v int64) {
		seen = append(seen, id)
	})
	if len(seen) != 3 {
		t.Fatalf("ForEach visited %d ids, want 3", len(seen))
	}
	if seen[0] != 3 || seen[1] != 5 || seen[2] != 9 {
		t.Fatalf("ForEach order = %v, want [3 5 9]", seen)
	}
}
