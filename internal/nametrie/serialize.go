package nametrie

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
)

// WriteTo serializes the trie as a pre-order traversal, reusing the
// idstore snapshot's 'N'/'C'/'0'/'1' tag convention (spec §4.2, §4.7) over
// the 48-way branching factor instead of 16-way.
func (t *Trie) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeNode(bw, t.root); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *node) error {
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
			if err := writeNode(w, c); err != nil {
				return err
			}
		}
	} else {
		if err := w.WriteByte('N'); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(n.elements))); err != nil {
		return err
	}
	for _, e := range n.elements {
		if err := w.WriteByte(byte(e.Kind)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, e.ID); err != nil {
			return err
		}
		if err := w.WriteByte(byte(e.Type)); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom decodes a trie previously written by WriteTo.
func ReadFrom(r io.Reader) (*Trie, error) {
	br := bufio.NewReader(r)
	root, err := readNode(br)
	if err != nil {
		return nil, err
	}
	return &Trie{root: root}, nil
}

func readNode(r *bufio.Reader) (*node, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	n := &node{}

	switch tag {
	case 'N':
	case 'C':
		for i := 0; i < alphabetSize; i++ {
			slot, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			switch slot {
			case '0':
				continue
			case '1':
				child, err := readNode(r)
				if err != nil {
					return nil, err
				}
				n.children[i] = child
			default:
				return nil, fmt.Errorf("nametrie: corrupt snapshot, expected '0'/'1', got %q", slot)
			}
		}
	default:
		return nil, fmt.Errorf("nametrie: corrupt snapshot, expected 'N'/'C', got %q", tag)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	n.elements = make([]model.OSMElement, 0, count)
	for i := uint32(0); i < count; i++ {
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		typeByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		n.elements = append(n.elements, model.OSMElement{
			Kind: model.ElementKind(kindByte),
			ID:   id,
			Type: model.RealWorldType(typeByte),
		})
	}

	return n, nil
}
