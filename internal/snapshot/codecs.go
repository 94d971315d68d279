package snapshot

import (
	"encoding/binary"
	"io"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/idstore"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
)

// coordCodec encodes a Coord as two little-endian int32s, for the `.n2c`
// file (node_coord, spec §3).
var coordCodec = idstore.Codec[coord.Coord]{
	Encode: func(w io.Writer, v coord.Coord) error {
		if err := binary.Write(w, binary.LittleEndian, v.X); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.Y)
	},
	Decode: func(r io.Reader) (coord.Coord, error) {
		var c coord.Coord
		if err := binary.Read(r, binary.LittleEndian, &c.X); err != nil {
			return c, err
		}
		if err := binary.Read(r, binary.LittleEndian, &c.Y); err != nil {
			return c, err
		}
		return c, nil
	},
}

// stringCodec encodes a length-prefixed UTF-8 string, for the `.nn`/`.wn`/
// `.rn` name files (spec §3: "id -> UTF-8 string").
var stringCodec = idstore.Codec[string]{
	Encode: func(w io.Writer, v string) error {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(v))); err != nil {
			return err
		}
		_, err := io.WriteString(w, v)
		return err
	},
	Decode: func(r io.Reader) (string, error) {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return "", err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	},
}

// wayNodesCodec encodes model.WayNodes as a length-prefixed int64 list, for
// the `.w2n` file (spec §3).
var wayNodesCodec = idstore.Codec[model.WayNodes]{
	Encode: func(w io.Writer, v model.WayNodes) error {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(v.Nodes))); err != nil {
			return err
		}
		for _, id := range v.Nodes {
			if err := binary.Write(w, binary.LittleEndian, id); err != nil {
				return err
			}
		}
		return nil
	},
	Decode: func(r io.Reader) (model.WayNodes, error) {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return model.WayNodes{}, err
		}
		nodes := make([]int64, n)
		for i := range nodes {
			if err := binary.Read(r, binary.LittleEndian, &nodes[i]); err != nil {
				return model.WayNodes{}, err
			}
		}
		return model.WayNodes{Nodes: nodes}, nil
	},
}

// relMemCodec encodes model.RelationMem as a length-prefixed list of
// (kind, id, real-world-type, role-flags) tuples, for the `.relmem` file
// (spec §3).
var relMemCodec = idstore.Codec[model.RelationMem]{
	Encode: func(w io.Writer, v model.RelationMem) error {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(v.Members))); err != nil {
			return err
		}
		for _, m := range v.Members {
			if err := binary.Write(w, binary.LittleEndian, uint8(m.Element.Kind)); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, m.Element.ID); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, uint8(m.Element.Type)); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, uint8(m.Role)); err != nil {
				return err
			}
		}
		return nil
	},
	Decode: func(r io.Reader) (model.RelationMem, error) {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return model.RelationMem{}, err
		}
		members := make([]model.RelationMember, n)
		for i := range members {
			var kind, typ, role uint8
			var id int64
			if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
				return model.RelationMem{}, err
			}
			if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
				return model.RelationMem{}, err
			}
			if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
				return model.RelationMem{}, err
			}
			if err := binary.Read(r, binary.LittleEndian, &role); err != nil {
				return model.RelationMem{}, err
			}
			members[i] = model.RelationMember{
				Element: model.OSMElement{Kind: model.ElementKind(kind), ID: id, Type: model.RealWorldType(typ)},
				Role:    model.RoleFlags(role),
			}
		}
		return model.RelationMem{Members: members}, nil
	},
}
