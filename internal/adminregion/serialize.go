package adminregion

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

// WriteTo serializes the store as the `.sweden` snapshot file (spec §4.7):
// an 'A' (admin-regions) section, followed by 'S' (SCB) and 'n' (NUTS-3)
// reverse-lookup sections, each length-prefixed so loading is
// self-describing without a separate version header (spec §4.7/§4.2).
func (s *Store) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := bw.WriteByte('A'); err != nil {
		return err
	}
	regions := s.AllRegions()
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(regions))); err != nil {
		return err
	}
	for _, r := range regions {
		if err := writeRegion(bw, r); err != nil {
			return err
		}
	}

	if err := bw.WriteByte('S'); err != nil {
		return err
	}
	if err := writeStringInt64Map(bw, s.scbToRelation); err != nil {
		return err
	}

	if err := bw.WriteByte('n'); err != nil {
		return err
	}
	if err := writeStringInt64Map(bw, s.nuts3ToRelation); err != nil {
		return err
	}

	return bw.Flush()
}

func writeRegion(w *bufio.Writer, r *Region) error {
	if err := binary.Write(w, binary.LittleEndian, r.RelationID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(r.AdminLevel)); err != nil {
		return err
	}
	if err := writeString(w, r.Name); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.Polygons))); err != nil {
		return err
	}
	for _, poly := range r.Polygons {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(poly))); err != nil {
			return err
		}
		for _, v := range poly {
			if err := binary.Write(w, binary.LittleEndian, v.X); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, v.Y); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func writeStringInt64Map(w *bufio.Writer, m map[string]int64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m))); err != nil {
		return err
	}
	for k, v := range m {
		if err := writeString(w, k); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom decodes a store previously written by WriteTo. It is entirely
// self-contained: nothing here depends on another index being resident.
func ReadFrom(r io.Reader) (*Store, error) {
	br := bufio.NewReader(r)
	b := NewBuilder(nil)

	tag, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != 'A' {
		return nil, fmt.Errorf("adminregion: expected 'A' section, got %q", tag)
	}
	var regionCount uint32
	if err := binary.Read(br, binary.LittleEndian, &regionCount); err != nil {
		return nil, err
	}
	for i := uint32(0); i < regionCount; i++ {
		region, err := readRegion(br)
		if err != nil {
			return nil, err
		}
		b.AddRegion(region)
	}

	tag, err = br.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != 'S' {
		return nil, fmt.Errorf("adminregion: expected 'S' section, got %q", tag)
	}
	scb, err := readStringInt64Map(br)
	if err != nil {
		return nil, err
	}
	for k, v := range scb {
		b.AddSCBCode(k, v)
	}

	tag, err = br.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != 'n' {
		return nil, fmt.Errorf("adminregion: expected 'n' section, got %q", tag)
	}
	nuts3, err := readStringInt64Map(br)
	if err != nil {
		return nil, err
	}
	for k, v := range nuts3 {
		b.AddNUTS3Code(k, v)
	}

	return b.Build(), nil
}

func readRegion(r *bufio.Reader) (*Region, error) {
	region := &Region{}
	if err := binary.Read(r, binary.LittleEndian, &region.RelationID); err != nil {
		return nil, err
	}
	var level int32
	if err := binary.Read(r, binary.LittleEndian, &level); err != nil {
		return nil, err
	}
	region.AdminLevel = int(level)

	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	region.Name = name

	var polyCount uint32
	if err := binary.Read(r, binary.LittleEndian, &polyCount); err != nil {
		return nil, err
	}
	region.Polygons = make([][]coord.Coord, polyCount)
	for i := uint32(0); i < polyCount; i++ {
		var vertexCount uint32
		if err := binary.Read(r, binary.LittleEndian, &vertexCount); err != nil {
			return nil, err
		}
		poly := make([]coord.Coord, vertexCount)
		for j := uint32(0); j < vertexCount; j++ {
			if err := binary.Read(r, binary.LittleEndian, &poly[j].X); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &poly[j].Y); err != nil {
				return nil, err
			}
		}
		region.Polygons[i] = poly
	}
	region.Bounds = ComputeBounds(region.Polygons)

	return region, nil
}

func readString(r *bufio.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readStringInt64Map(r *bufio.Reader) (map[string]int64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	m := make(map[string]int64, n)
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		var v int64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}
