package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// lacing returns the segment table entries for one packet of size n.
// An unterminated packet continues on the next page.
func lacing(n int, terminated bool) []byte {
	var segs []byte
	for n >= 255 {
		segs = append(segs, 255)
		n -= 255
	}
	if terminated {
		segs = append(segs, byte(n))
	}
	return segs
}

func writeOggHeader(w *bytes.Buffer, granule int64, flags byte, seq uint32, segments []byte) {
	w.WriteString("OggS")
	w.WriteByte(0)
	w.WriteByte(flags)
	_ = binary.Write(w, binary.LittleEndian, granule)
	_ = binary.Write(w, binary.LittleEndian, uint32(1))
	_ = binary.Write(w, binary.LittleEndian, seq)
	_ = binary.Write(w, binary.LittleEndian, uint32(0))
	w.WriteByte(byte(len(segments)))
	w.Write(segments)
}

// writeOggPage writes a page whose body bytes all equal fill.
func writeOggPage(w *bytes.Buffer, granule int64, flags byte, seq uint32, fill byte, segments []byte) {
	var size int
	for _, s := range segments {
		size += int(s)
	}
	writeOggHeader(w, granule, flags, seq, segments)
	w.Write(bytes.Repeat([]byte{fill}, size))
}

func writeOggPacketPage(w *bytes.Buffer, granule int64, flags byte, seq uint32, packet []byte) {
	writeOggHeader(w, granule, flags, seq, lacing(len(packet), true))
	w.Write(packet)
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }

func TestParseOggPageHeader(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 48000, oggFlagContinued, 7, 0, []byte{255, 10})

	hdr, err := parseOggPageHeader(&buf)
	if err != nil {
		t.Fatalf("parseOggPageHeader() error = %v", err)
	}
	if hdr.GranulePos != 48000 {
		t.Errorf("GranulePos = %d, want 48000", hdr.GranulePos)
	}
	if hdr.Flags != oggFlagContinued {
		t.Errorf("Flags = %#x, want %#x", hdr.Flags, oggFlagContinued)
	}
	if hdr.Sequence != 7 {
		t.Errorf("Sequence = %d, want 7", hdr.Sequence)
	}
	if hdr.bodySize() != 265 {
		t.Errorf("bodySize() = %d, want 265", hdr.bodySize())
	}
}

func TestParseOggPageHeader_InvalidMagic(t *testing.T) {
	header := append([]byte("BadS"), make([]byte, 23)...)
	if _, err := parseOggPageHeader(bytes.NewReader(header)); !errors.Is(err, errOggMagic) {
		t.Errorf("parseOggPageHeader() error = %v, want errOggMagic", err)
	}
}

func TestReadOggPageBody(t *testing.T) {
	tests := []struct {
		name        string
		segments    []uint8
		wantPackets []int
		wantPartial int
	}{
		{"two packets", []uint8{100, 50}, []int{100, 50}, 0},
		{"spanning segments", []uint8{255, 255, 100}, []int{610}, 0},
		{"exact multiple of 255", []uint8{255, 0}, []int{255}, 0},
		{"continues on next page", []uint8{30, 255, 255}, []int{30}, 510},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr := &oggPageHeader{Segments: tt.segments}
			body := make([]byte, hdr.bodySize())

			packets, partial, err := readOggPageBody(bytes.NewReader(body), hdr)
			if err != nil {
				t.Fatalf("readOggPageBody() error = %v", err)
			}
			if len(packets) != len(tt.wantPackets) {
				t.Fatalf("got %d packets, want %d", len(packets), len(tt.wantPackets))
			}
			for i, want := range tt.wantPackets {
				if len(packets[i]) != want {
					t.Errorf("packet[%d] len = %d, want %d", i, len(packets[i]), want)
				}
			}
			if len(partial) != tt.wantPartial {
				t.Errorf("partial len = %d, want %d", len(partial), tt.wantPartial)
			}
		})
	}
}

func TestOggReader_JoinsContinuedPacket(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 0, 0, 0, 1, append(lacing(10, true), lacing(255, false)...))
	writeOggPage(&buf, 100, oggFlagContinued, 1, 2, lacing(20, true))

	ogr := newOggReader(bytes.NewReader(buf.Bytes()))

	page, err := ogr.readPage()
	if err != nil {
		t.Fatalf("readPage() error = %v", err)
	}
	if len(page.Packets) != 1 || len(page.Packets[0]) != 10 {
		t.Fatalf("first page packets = %d, want one 10-byte packet", len(page.Packets))
	}

	page, err = ogr.readPage()
	if err != nil {
		t.Fatalf("readPage() error = %v", err)
	}
	if len(page.Packets) != 1 {
		t.Fatalf("second page packets = %d, want 1", len(page.Packets))
	}
	joined := page.Packets[0]
	if len(joined) != 255+20 {
		t.Fatalf("joined len = %d, want %d", len(joined), 255+20)
	}
	if joined[0] != 1 || joined[len(joined)-1] != 2 {
		t.Errorf("joined packet = [%d ... %d], want [1 ... 2]", joined[0], joined[len(joined)-1])
	}
}

func TestOggReader_DropsOrphanContinuation(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 100, oggFlagContinued, 5, 3, append(lacing(40, true), lacing(12, true)...))

	ogr := newOggReader(bytes.NewReader(buf.Bytes()))
	page, err := ogr.readPage()
	if err != nil {
		t.Fatalf("readPage() error = %v", err)
	}
	if len(page.Packets) != 1 || len(page.Packets[0]) != 12 {
		t.Errorf("packets = %d, want only the 12-byte packet", len(page.Packets))
	}
}

// multiPageStream writes a header page followed by five audio pages at
// one second intervals of 48kHz audio.
func multiPageStream(t *testing.T) (*oggReader, int64) {
	t.Helper()
	var buf bytes.Buffer
	writeOggPage(&buf, 0, 0x02, 0, 0, lacing(30, true))
	dataStart := int64(buf.Len())
	for i := int64(1); i <= 5; i++ {
		writeOggPage(&buf, i*48000, 0, uint32(i), byte(i), lacing(500, true)) //nolint:gosec // small test values
	}

	r := bytes.NewReader(buf.Bytes())
	if _, err := r.Seek(dataStart, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	ogr := newOggReader(r)
	if err := ogr.index(); err != nil {
		t.Fatalf("index() error = %v", err)
	}
	return ogr, dataStart
}

func TestOggReader_Index(t *testing.T) {
	ogr, dataStart := multiPageStream(t)

	if ogr.dataStart != dataStart {
		t.Errorf("dataStart = %d, want %d", ogr.dataStart, dataStart)
	}
	if len(ogr.pages) != 5 {
		t.Errorf("indexed %d pages, want 5", len(ogr.pages))
	}
	if got := ogr.duration(); got != 240000 {
		t.Errorf("duration() = %d, want 240000", got)
	}

	page, err := ogr.readPage()
	if err != nil {
		t.Fatalf("readPage() error = %v", err)
	}
	if page.GranulePos != 48000 {
		t.Errorf("first page after index GranulePos = %d, want 48000", page.GranulePos)
	}
}

func TestOggReader_SeekToGranule(t *testing.T) {
	ogr, _ := multiPageStream(t)

	tests := []struct {
		name       string
		target     int64
		wantResume int64
		wantNext   int64
	}{
		{"start", 0, 0, 48000},
		{"page boundary", 96000, 96000, 144000},
		{"between pages", 120000, 96000, 144000},
		{"before first page end", 1000, 0, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := ogr.seekToGranule(tt.target)
			if err != nil {
				t.Fatalf("seekToGranule(%d) error = %v", tt.target, err)
			}
			if resume != tt.wantResume {
				t.Errorf("seekToGranule(%d) = %d, want %d", tt.target, resume, tt.wantResume)
			}
			page, err := ogr.readPage()
			if err != nil {
				t.Fatalf("readPage() error = %v", err)
			}
			if page.GranulePos != tt.wantNext {
				t.Errorf("next page GranulePos = %d, want %d", page.GranulePos, tt.wantNext)
			}
		})
	}
}

func TestOggReader_SeekToEnd(t *testing.T) {
	ogr, _ := multiPageStream(t)

	resume, err := ogr.seekToGranule(240000)
	if err != nil {
		t.Fatalf("seekToGranule() error = %v", err)
	}
	if resume != 240000 {
		t.Errorf("seekToGranule() = %d, want 240000", resume)
	}
	if _, err := ogr.readPage(); !errors.Is(err, io.EOF) {
		t.Errorf("readPage() error = %v, want io.EOF", err)
	}
}

func vorbisIdent(channels byte, rate uint32) []byte {
	p := []byte{0x01, 'v', 'o', 'r', 'b', 'i', 's', 0, 0, 0, 0, channels}
	p = binary.LittleEndian.AppendUint32(p, rate)
	p = append(p, make([]byte, 12)...)
	return append(p, 0xB8, 1)
}

func TestIdentifyOgg(t *testing.T) {
	tests := []struct {
		name   string
		packet []byte
		want   error
	}{
		{"vorbis", vorbisIdent(2, 44100), nil},
		{"opus", []byte("OpusHead\x01\x02\x38\x01\x80\xbb\x00\x00\x00\x00\x00"), errOggOpus},
		{"flac", []byte("\x7fFLAC\x01\x00"), errOggCodec},
		{"empty", nil, errOggCodec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := identifyOgg(tt.packet); !errors.Is(err, tt.want) {
				t.Errorf("identifyOgg() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseVorbisIdent(t *testing.T) {
	channels, rate, err := parseVorbisIdent(vorbisIdent(1, 22050))
	if err != nil {
		t.Fatalf("parseVorbisIdent() error = %v", err)
	}
	if channels != 1 || rate != 22050 {
		t.Errorf("parseVorbisIdent() = (%d, %d), want (1, 22050)", channels, rate)
	}

	if _, _, err := parseVorbisIdent(vorbisIdent(0, 22050)); !errors.Is(err, errVorbisIdent) {
		t.Errorf("zero channels error = %v, want errVorbisIdent", err)
	}
	if _, _, err := parseVorbisIdent(vorbisIdent(2, 44100)[:12]); !errors.Is(err, errVorbisIdent) {
		t.Errorf("short header error = %v, want errVorbisIdent", err)
	}
}

func TestDecodeOgg_RejectsOpus(t *testing.T) {
	var buf bytes.Buffer
	writeOggPacketPage(&buf, 0, 0x02, 0, []byte("OpusHead\x01\x02\x38\x01\x80\xbb\x00\x00\x00\x00\x00"))
	writeOggPacketPage(&buf, 0, 0, 1, []byte("OpusTags\x00\x00\x00\x00\x00\x00\x00\x00"))

	_, _, err := decodeOgg(nopSeekCloser{bytes.NewReader(buf.Bytes())})
	if !errors.Is(err, errOggOpus) {
		t.Errorf("decodeOgg() error = %v, want errOggOpus", err)
	}
}

func TestDecodeOgg_Truncated(t *testing.T) {
	var buf bytes.Buffer
	writeOggPacketPage(&buf, 0, 0x02, 0, vorbisIdent(2, 44100))

	_, _, err := decodeOgg(nopSeekCloser{bytes.NewReader(buf.Bytes())})
	if !errors.Is(err, io.EOF) {
		t.Errorf("decodeOgg() error = %v, want io.EOF", err)
	}
}
