package roadindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

// WriteTo serializes the index as the road portion of the `.sweden`
// snapshot section (spec §4.7): 'E' (European, fixed-size array), 'R'
// (national, flat array), 'L' (regional, [region][number] map), and '_'
// (the still-unresolved Unknown-regional bucket, kept across restarts so a
// later repair pass run can still reconcile it).
func (idx *Index) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := bw.WriteByte('E'); err != nil {
		return err
	}
	for i := 0; i < europeanLen; i++ {
		if err := writeBucketSlot(bw, idx.european[i]); err != nil {
			return err
		}
	}

	if err := bw.WriteByte('R'); err != nil {
		return err
	}
	for i := 0; i < nationalLen; i++ {
		if err := writeBucketSlot(bw, idx.national[i]); err != nil {
			return err
		}
	}

	if err := bw.WriteByte('L'); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(idx.regional))); err != nil {
		return err
	}
	for region, byNumber := range idx.regional {
		if err := bw.WriteByte(byte(region)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(byNumber))); err != nil {
			return err
		}
		for number, b := range byNumber {
			if err := binary.Write(bw, binary.LittleEndian, int32(number)); err != nil {
				return err
			}
			if err := writeBucketSlot(bw, b); err != nil {
				return err
			}
		}
	}

	if err := bw.WriteByte('_'); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(idx.unknownRegional))); err != nil {
		return err
	}
	for number, b := range idx.unknownRegional {
		if err := binary.Write(bw, binary.LittleEndian, int32(number)); err != nil {
			return err
		}
		if err := writeBucketSlot(bw, b); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeBucketSlot(w *bufio.Writer, b *bucket) error {
	if b == nil {
		return w.WriteByte('0')
	}
	if err := w.WriteByte('1'); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b.ways))); err != nil {
		return err
	}
	for _, way := range b.ways {
		if err := writeWayRef(w, way); err != nil {
			return err
		}
	}
	return nil
}

func writeWayRef(w *bufio.Writer, way WayRef) error {
	if err := binary.Write(w, binary.LittleEndian, way.ID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(way.Coords))); err != nil {
		return err
	}
	for _, c := range way.Coords {
		if err := binary.Write(w, binary.LittleEndian, c.X); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, c.Y); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(way.NodeIDs))); err != nil {
		return err
	}
	for _, id := range way.NodeIDs {
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom decodes an Index previously written by WriteTo. The blacklist is
// not persisted: the loaded Index has an empty blacklist, so later Add
// calls filter nothing, and a loaded snapshot is assumed already
// blacklist-filtered at write time.
func ReadFrom(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	idx := NewIndex(nil)

	tag, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != 'E' {
		return nil, fmt.Errorf("roadindex: expected 'E' section, got %q", tag)
	}
	for i := 0; i < europeanLen; i++ {
		b, err := readBucketSlot(br)
		if err != nil {
			return nil, err
		}
		idx.european[i] = b
	}

	tag, err = br.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != 'R' {
		return nil, fmt.Errorf("roadindex: expected 'R' section, got %q", tag)
	}
	for i := 0; i < nationalLen; i++ {
		b, err := readBucketSlot(br)
		if err != nil {
			return nil, err
		}
		idx.national[i] = b
	}

	tag, err = br.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != 'L' {
		return nil, fmt.Errorf("roadindex: expected 'L' section, got %q", tag)
	}
	var regionCount uint32
	if err := binary.Read(br, binary.LittleEndian, &regionCount); err != nil {
		return nil, err
	}
	for i := uint32(0); i < regionCount; i++ {
		regionByte, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		region := RegionCode(regionByte)
		var numberCount uint32
		if err := binary.Read(br, binary.LittleEndian, &numberCount); err != nil {
			return nil, err
		}
		byNumber := make(map[int]*bucket, numberCount)
		for j := uint32(0); j < numberCount; j++ {
			var number int32
			if err := binary.Read(br, binary.LittleEndian, &number); err != nil {
				return nil, err
			}
			b, err := readBucketSlot(br)
			if err != nil {
				return nil, err
			}
			byNumber[int(number)] = b
		}
		idx.regional[region] = byNumber
	}

	tag, err = br.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != '_' {
		return nil, fmt.Errorf("roadindex: expected '_' section, got %q", tag)
	}
	var unknownCount uint32
	if err := binary.Read(br, binary.LittleEndian, &unknownCount); err != nil {
		return nil, err
	}
	for i := uint32(0); i < unknownCount; i++ {
		var number int32
		if err := binary.Read(br, binary.LittleEndian, &number); err != nil {
			return nil, err
		}
		b, err := readBucketSlot(br)
		if err != nil {
			return nil, err
		}
		idx.unknownRegional[int(number)] = b
	}

	return idx, nil
}

func readBucketSlot(r *bufio.Reader) (*bucket, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag == '0' {
		return nil, nil
	}
	if tag != '1' {
		return nil, fmt.Errorf("roadindex: corrupt snapshot, expected '0'/'1' bucket tag, got %q", tag)
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := newBucket()
	for i := uint32(0); i < n; i++ {
		way, err := readWayRef(r)
		if err != nil {
			return nil, err
		}
		b.add(way)
	}
	return b, nil
}

func readWayRef(r *bufio.Reader) (WayRef, error) {
	var way WayRef
	if err := binary.Read(r, binary.LittleEndian, &way.ID); err != nil {
		return way, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return way, err
	}
	way.Coords = make([]coord.Coord, n)
	for i := uint32(0); i < n; i++ {
		if err := binary.Read(r, binary.LittleEndian, &way.Coords[i].X); err != nil {
			return way, err
		}
		if err := binary.Read(r, binary.LittleEndian, &way.Coords[i].Y); err != nil {
			return way, err
		}
	}
	var nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return way, err
	}
	if nodeCount > 0 {
		way.NodeIDs = make([]int64, nodeCount)
		for i := uint32(0); i < nodeCount; i++ {
			if err := binary.Read(r, binary.LittleEndian, &way.NodeIDs[i]); err != nil {
				return way, err
			}
		}
	}
	return way, nil
}
