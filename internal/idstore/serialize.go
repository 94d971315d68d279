package idstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Serialization format (spec §4.2): a pre-order traversal tagged with 'N'
// (leaf / no children) or 'C' (has children) bytes; within a 'C' node each
// of the 16 child slots is marked '0' (absent) or '1' (present), a present
// slot being followed by that child's own encoding. After its tag and
// children, each node writes its 16-bit reference counter, then a presence
// byte (1 or 0) followed by the encoded value when present.

// Codec encodes and decodes a Store's value type to/from bytes. Callers
// supply one per value type stored (e.g. a Coord, a string, a WayNodes).
type Codec[V any] struct {
	Encode func(w io.Writer, v V) error
	Decode func(r io.Reader) (V, error)
}

// WriteTo serializes the store using codec, writing the pre-order tagged
// traversal described above, with per-node reference counters interleaved
// so a snapshot round-trip reproduces both the value map and the counters
// the simplifier relies on (spec §8.5).
func (s *Store[V]) WriteTo(w io.Writer, codec Codec[V]) error {
	bw := bufio.NewWriter(w)
	if err := writeNode(bw, s.root, codec); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNode[V any](w *bufio.Writer, n *node[V], codec Codec[V]) error {
	hasChildren := false
	for _, c := range n.children {
		if c != nil {
			hasChildren = true
			break
		}
	}

	if hasChildren {
		if err := w.WriteByte('C'); err != nil {
			return err
		}
		for _, c := range n.children {
			if c == nil {
				if err := w.WriteByte('0'); err != nil {
					return err
				}
				continue
			}
			if err := w.WriteByte('1'); err != nil {
				return err
			}
			if err := writeNode(w, c, codec); err != nil {
				return err
			}
		}
	} else {
		if err := w.WriteByte('N'); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, n.counter); err != nil {
		return err
	}
	if n.hasValue {
		if err := w.WriteByte(1); err != nil {
			return err
		}
		return codec.Encode(w, n.value)
	}
	return w.WriteByte(0)
}

// ReadFrom decodes a store previously written by WriteTo.
func ReadFrom[V any](r io.Reader, codec Codec[V]) (*Store[V], error) {
	br := bufio.NewReader(r)
	root, size, err := readNode(br, codec)
	if err != nil {
		return nil, err
	}
	return &Store[V]{root: root, size: size}, nil
}

func readNode[V any](r *bufio.Reader, codec Codec[V]) (*node[V], int, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, 0, err
	}

	n := &node[V]{}
	size := 0

	switch tag {
	case 'N':
		// no children
	case 'C':
		for i := 0; i < 16; i++ {
			slot, err := r.ReadByte()
			if err != nil {
				return nil, 0, err
			}
			switch slot {
			case '0':
				continue
			case '1':
				child, childSize, err := readNode(r, codec)
				if err != nil {
					return nil, 0, err
				}
				n.children[i] = child
				size += childSize
			default:
				return nil, 0, fmt.Errorf("idstore: corrupt snapshot, expected '0'/'1' child tag, got %q", slot)
			}
		}
	default:
		return nil, 0, fmt.Errorf("idstore: corrupt snapshot, expected 'N'/'C' node tag, got %q", tag)
	}

	if err := binary.Read(r, binary.LittleEndian, &n.counter); err != nil {
		return nil, 0, err
	}
	present, err := r.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	if present == 1 {
		v, err := codec.Decode(r)
		if err != nil {
			return nil, 0, err
		}
		n.value = v
		n.hasValue = true
		size++
	}

	return n, size, nil
}
