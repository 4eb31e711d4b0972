package bmp

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// PackCompression indicates the compression used for the pack content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

func (c PackCompression) String() string {
	switch c {
	case PackCompNone:
		return "none"
	case PackCompZlib:
		return "zlib"
	case PackCompZstd:
		return "zstd"
	}
	return "unknown"
}

// PackLayout specifies how the content section encodes entries.
type PackLayout uint8

const (
	// LayoutRaw stores every BMP file as an independent blob.
	LayoutRaw PackLayout = 0
	// LayoutCDC stores a content-defined chunk dictionary and entries as
	// sequences of chunk refs, so sprites sharing palettes or rows dedup.
	LayoutCDC PackLayout = 1
)

func (l PackLayout) String() string {
	switch l {
	case LayoutRaw:
		return "raw"
	case LayoutCDC:
		return "cdc"
	}
	return "unknown"
}

const (
	packMagicStr = "BMPPACK\x00"
	packVersion1 = 1
	packVersion2 = 2

	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384
)

// ErrInvalidPack reports a malformed .bmppack.
var ErrInvalidPack = errors.New("bmp: invalid pack")

// PackEntry is a single named BMP file inside a pack.
type PackEntry struct {
	Name string
	Data []byte
}

// NewPackEntry checks that data is a BMP file this package can decode
// before it is packed.
func NewPackEntry(name string, data []byte) (PackEntry, error) {
	if len(name) > 0xFFFF {
		return PackEntry{}, errors.Errorf("entry name too long: %d bytes", len(name))
	}
	if _, err := DecodeHeaderBytes(data); err != nil {
		return PackEntry{}, errors.Wrapf(err, "entry %s", name)
	}
	return PackEntry{Name: name, Data: data}, nil
}

// Checksum is the xxhash64 of the entry's file bytes.
func (e PackEntry) Checksum() uint64 { return xxhash.Sum64(e.Data) }

// Decode decodes the entry's BMP file.
func (e PackEntry) Decode() (*Image, error) { return DecodeBytes(e.Data) }

// Pack is an asset bundle of BMP files.
type Pack struct {
	Entries []PackEntry
}

// Sort orders entries by name so marshaled packs are reproducible.
func (p *Pack) Sort() {
	sort.Slice(p.Entries, func(i, j int) bool { return p.Entries[i].Name < p.Entries[j].Name })
}

// Marshal encodes using the raw layout.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	return p.MarshalEx(LayoutRaw, comp)
}

// MarshalEx encodes the pack with the given layout and compression codec.
// Raw layout with none or zlib is written as version 1, everything else as
// version 2, which carries an explicit layout byte.
func (p *Pack) MarshalEx(layout PackLayout, comp PackCompression) ([]byte, error) {
	version := uint8(packVersion2)
	if layout == LayoutRaw && (comp == PackCompNone || comp == PackCompZlib) {
		version = packVersion1
	}
	for _, e := range p.Entries {
		if len(e.Name) > 0xFFFF {
			return nil, errors.Errorf("entry name too long: %s", e.Name)
		}
	}

	var content bytes.Buffer
	w := func(v any) { _ = binary.Write(&content, binary.LittleEndian, v) }
	writeName := func(name string) {
		w(uint16(len(name)))
		content.WriteString(name)
	}

	if version >= packVersion2 {
		w(uint8(layout))
	}
	switch layout {
	case LayoutRaw:
		w(uint32(len(p.Entries)))
		for _, e := range p.Entries {
			writeName(e.Name)
			w(uint32(len(e.Data)))
			content.Write(e.Data)
		}
	case LayoutCDC:
		w(uint32(cdcTarget))
		w(uint32(cdcMin))
		w(uint32(cdcMax))
		dict, sequences := buildCDCIndex(p.Entries, cdcTarget, cdcMin, cdcMax)
		w(uint32(len(dict)))
		for _, blk := range dict {
			w(uint32(len(blk)))
			content.Write(blk)
		}
		w(uint32(len(p.Entries)))
		for i, e := range p.Entries {
			writeName(e.Name)
			w(uint32(len(e.Data)))
			w(uint32(len(sequences[i])))
			for _, idx := range sequences[i] {
				w(uint32(idx))
			}
		}
	default:
		return nil, errors.Errorf("unsupported pack layout: %d", layout)
	}

	var final []byte
	switch comp {
	case PackCompNone:
		final = content.Bytes()
	case PackCompZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(content.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		final = buf.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		final = enc.EncodeAll(content.Bytes(), nil)
		_ = enc.Close()
	default:
		return nil, errors.Errorf("unsupported pack compression: %d", comp)
	}

	var out bytes.Buffer
	out.WriteString(packMagicStr)
	out.WriteByte(version)
	out.WriteByte(uint8(comp))
	out.Write(final)
	return out.Bytes(), nil
}

// packReader reads little-endian fields and keeps the first error.
type packReader struct {
	r   *bytes.Reader
	err error
}

func (pr *packReader) read(v any) {
	if pr.err == nil {
		pr.err = binary.Read(pr.r, binary.LittleEndian, v)
	}
}

func (pr *packReader) u8() (v uint8)   { pr.read(&v); return }
func (pr *packReader) u16() (v uint16) { pr.read(&v); return }
func (pr *packReader) u32() (v uint32) { pr.read(&v); return }

// bytes reads n bytes, refusing lengths the remaining input cannot hold.
func (pr *packReader) bytes(n uint32) []byte {
	if pr.err != nil {
		return nil
	}
	if int64(n) > int64(pr.r.Len()) {
		pr.err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	_, pr.err = io.ReadFull(pr.r, b)
	return b
}

// count reads an element count, each element taking at least minSize bytes.
func (pr *packReader) count(minSize int) uint32 {
	n := pr.u32()
	if pr.err == nil && int64(n)*int64(minSize) > int64(pr.r.Len()) {
		pr.err = errors.Wrapf(ErrInvalidPack, "count %d exceeds remaining input", n)
	}
	return n
}

// UnmarshalPack parses a .bmppack and returns the pack and the compression it
// was stored with.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagicStr)+2 || string(data[:len(packMagicStr)]) != packMagicStr {
		return nil, 0, errors.Wrap(ErrInvalidPack, "bad magic")
	}
	version := data[8]
	comp := PackCompression(data[9])
	content := data[10:]
	switch comp {
	case PackCompNone:
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, 0, errors.Wrap(ErrInvalidPack, err.Error())
		}
		defer zr.Close()
		if content, err = io.ReadAll(zr); err != nil {
			return nil, 0, errors.Wrap(ErrInvalidPack, err.Error())
		}
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		if content, err = dec.DecodeAll(content, nil); err != nil {
			return nil, 0, errors.Wrap(ErrInvalidPack, err.Error())
		}
	default:
		return nil, 0, errors.Wrapf(ErrInvalidPack, "unsupported compression %d", comp)
	}

	pr := &packReader{r: bytes.NewReader(content)}
	layout := LayoutRaw
	switch version {
	case packVersion1:
	case packVersion2:
		layout = PackLayout(pr.u8())
	default:
		return nil, 0, errors.Wrapf(ErrInvalidPack, "unsupported version %d", version)
	}

	pack := &Pack{}
	switch layout {
	case LayoutRaw:
		n := pr.count(6)
		for i := uint32(0); i < n && pr.err == nil; i++ {
			name := string(pr.bytes(uint32(pr.u16())))
			body := pr.bytes(pr.u32())
			pack.Entries = append(pack.Entries, PackEntry{Name: name, Data: body})
		}
	case LayoutCDC:
		pr.u32() // target
		pr.u32() // min
		maxSz := pr.u32()
		nBlocks := pr.count(4)
		blocks := make([][]byte, 0, nBlocks)
		for i := uint32(0); i < nBlocks && pr.err == nil; i++ {
			blocks = append(blocks, pr.bytes(pr.u32()))
		}
		n := pr.count(10)
		for i := uint32(0); i < n && pr.err == nil; i++ {
			name := string(pr.bytes(uint32(pr.u16())))
			rawLen := pr.u32()
			seqLen := pr.count(4)
			var body []byte
			for j := uint32(0); j < seqLen && pr.err == nil; j++ {
				idx := pr.u32()
				if idx >= uint32(len(blocks)) {
					pr.err = errors.Wrapf(ErrInvalidPack, "chunk index %d out of range", idx)
					break
				}
				if uint64(len(body))+uint64(len(blocks[idx])) > uint64(rawLen)+uint64(maxSz) {
					pr.err = errors.Wrap(ErrInvalidPack, "chunk sequence longer than entry")
					break
				}
				body = append(body, blocks[idx]...)
			}
			if pr.err == nil && uint32(len(body)) != rawLen {
				pr.err = errors.Wrapf(ErrInvalidPack, "entry %s: %d bytes, want %d", name, len(body), rawLen)
			}
			pack.Entries = append(pack.Entries, PackEntry{Name: name, Data: body})
		}
	default:
		return nil, 0, errors.Wrapf(ErrInvalidPack, "unknown layout %d", layout)
	}
	if pr.err != nil {
		if errors.Is(pr.err, ErrInvalidPack) {
			return nil, 0, pr.err
		}
		return nil, 0, errors.Wrap(ErrInvalidPack, pr.err.Error())
	}
	return pack, comp, nil
}

// buildCDCIndex performs content-defined chunking over all entries, building
// a dictionary of unique chunks and, per entry, the sequence of chunk indices.
func buildCDCIndex(entries []PackEntry, target, minSz, maxSz int) ([][]byte, [][]int) {
	// Gear table seeded deterministically through xxhash.
	gear := make([]uint64, 256)
	seed := xxhash.Sum64([]byte("bmppack-cdc-gear-seed"))
	for i := range gear {
		var b [16]byte
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}

	blocks := make([][]byte, 0, 256)
	index := make(map[uint64]int, 1024)
	seqs := make([][]int, len(entries))

	pow := 1 << int(math.Round(math.Log2(float64(target))))
	mask := uint64(pow - 1)

	addBlock := func(b []byte) int {
		h := xxhash.Sum64(b)
		if idx, ok := index[h]; ok && bytes.Equal(blocks[idx], b) {
			return idx
		}
		idx := len(blocks)
		blocks = append(blocks, append([]byte(nil), b...))
		index[h] = idx
		return idx
	}

	for i, e := range entries {
		data := e.Data
		var seq []int
		start := 0
		var h uint64
		for pos := 0; pos < len(data); pos++ {
			h = h<<1 + gear[data[pos]]
			if pos-start+1 < minSz {
				continue
			}
			if h&mask == 0 || pos-start+1 >= maxSz {
				seq = append(seq, addBlock(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seq = append(seq, addBlock(data[start:]))
		}
		seqs[i] = seq
	}
	return blocks, seqs
}
