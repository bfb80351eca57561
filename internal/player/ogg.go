package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/vorbis"
)

const oggFlagContinued = 0x01

var (
	errOggMagic    = errors.New("ogg: invalid capture pattern")
	errOggVersion  = errors.New("ogg: unsupported version")
	errOggOpus     = errors.New("ogg: opus streams are not supported")
	errOggCodec    = errors.New("ogg: unknown codec")
	errVorbisIdent = errors.New("vorbis: invalid identification header")
)

type oggPageHeader struct {
	Flags      byte
	GranulePos int64
	Serial     uint32
	Sequence   uint32
	Segments   []uint8
}

func (h *oggPageHeader) bodySize() int {
	var n int
	for _, s := range h.Segments {
		n += int(s)
	}
	return n
}

func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [27]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errOggMagic
	}
	if buf[4] != 0 {
		return nil, errOggVersion
	}

	hdr := &oggPageHeader{
		Flags:      buf[5],
		GranulePos: int64(binary.LittleEndian.Uint64(buf[6:14])),
		Serial:     binary.LittleEndian.Uint32(buf[14:18]),
		Sequence:   binary.LittleEndian.Uint32(buf[18:22]),
	}
	if n := buf[26]; n > 0 {
		hdr.Segments = make([]uint8, n)
		if _, err := io.ReadFull(r, hdr.Segments); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

// readOggPageBody splits a page body into packets. A trailing packet that
// continues on the next page is returned as partial.
func readOggPageBody(r io.Reader, hdr *oggPageHeader) (packets [][]byte, partial []byte, err error) {
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}
	start, end := 0, 0
	for _, s := range hdr.Segments {
		end += int(s)
		if s < 255 {
			packets = append(packets, body[start:end])
			start = end
		}
	}
	if start < end {
		partial = body[start:end]
	}
	return packets, partial, nil
}

type oggPage struct {
	GranulePos int64
	Packets    [][]byte
}

type oggPageOffset struct {
	offset  int64
	granule int64
}

// oggReader reads packets page by page and seeks by granule position
// using an index built once the headers are consumed.
type oggReader struct {
	r         io.ReadSeeker
	dataStart int64
	pages     []oggPageOffset
	end       int64
	partial   []byte
}

func newOggReader(r io.ReadSeeker) *oggReader {
	return &oggReader{r: r}
}

func (o *oggReader) readPage() (*oggPage, error) {
	hdr, err := parseOggPageHeader(o.r)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	packets, partial, err := readOggPageBody(o.r, hdr)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	if hdr.Flags&oggFlagContinued != 0 {
		switch {
		case len(o.partial) == 0 && len(packets) > 0:
			// Tail of a packet whose head was never read.
			packets = packets[1:]
		case len(o.partial) == 0:
			partial = nil
		case len(packets) > 0:
			packets[0] = slices.Concat(o.partial, packets[0])
		default:
			partial = slices.Concat(o.partial, partial)
		}
	}
	o.partial = partial
	return &oggPage{GranulePos: hdr.GranulePos, Packets: packets}, nil
}

// index records the current offset as the start of audio data and scans
// every following page header. The reader is left at the data start.
func (o *oggReader) index() error {
	start, err := o.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	o.dataStart = start
	o.pages = o.pages[:0]

	off := start
	for {
		hdr, err := parseOggPageHeader(o.r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return err
		}
		o.pages = append(o.pages, oggPageOffset{offset: off, granule: hdr.GranulePos})
		if off, err = o.r.Seek(int64(hdr.bodySize()), io.SeekCurrent); err != nil {
			return err
		}
	}
	o.end = off
	return o.reset()
}

func (o *oggReader) reset() error {
	o.partial = nil
	_, err := o.r.Seek(o.dataStart, io.SeekStart)
	return err
}

// duration is the granule position of the last page that completes a packet.
func (o *oggReader) duration() int64 {
	for i := len(o.pages) - 1; i >= 0; i-- {
		if g := o.pages[i].granule; g >= 0 {
			return g
		}
	}
	return 0
}

// seekToGranule positions the reader after the last page ending at or
// before target and returns the granule decoding resumes from.
func (o *oggReader) seekToGranule(target int64) (int64, error) {
	resume, offset := int64(0), o.dataStart
	for i, p := range o.pages {
		if p.granule < 0 {
			continue
		}
		if p.granule > target {
			break
		}
		resume = p.granule
		if i+1 < len(o.pages) {
			offset = o.pages[i+1].offset
		} else {
			offset = o.end
		}
	}
	o.partial = nil
	if _, err := o.r.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	return resume, nil
}

// identifyOgg checks the first packet of a logical stream.
func identifyOgg(first []byte) error {
	switch {
	case len(first) >= 8 && string(first[:8]) == "OpusHead":
		return errOggOpus
	case len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis":
		return nil
	default:
		return errOggCodec
	}
}

// parseVorbisIdent reads channels and sample rate from the identification header.
func parseVorbisIdent(packet []byte) (channels, sampleRate int, err error) {
	if len(packet) < 16 || binary.LittleEndian.Uint32(packet[7:11]) != 0 {
		return 0, 0, errVorbisIdent
	}
	channels = int(packet[11])
	sampleRate = int(binary.LittleEndian.Uint32(packet[12:16]))
	if channels == 0 || sampleRate == 0 {
		return 0, 0, errVorbisIdent
	}
	return channels, sampleRate, nil
}

// decodeOgg decodes an Ogg Vorbis stream.
func decodeOgg(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	ogg := newOggReader(rc)

	var headers [][]byte
	for len(headers) < 3 {
		page, err := ogg.readPage()
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ogg headers: %w", err)
		}
		headers = append(headers, page.Packets...)
		if len(headers) > 0 {
			if err := identifyOgg(headers[0]); err != nil {
				return nil, beep.Format{}, err
			}
		}
	}

	channels, rate, err := parseVorbisIdent(headers[0])
	if err != nil {
		return nil, beep.Format{}, err
	}
	dec := &vorbis.Decoder{}
	for _, h := range headers[:3] {
		if err := dec.ReadHeader(h); err != nil {
			return nil, beep.Format{}, err
		}
	}
	if err := ogg.index(); err != nil {
		return nil, beep.Format{}, err
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: min(channels, 2),
		Precision:   2,
	}
	return &oggStream{ogg: ogg, dec: dec, channels: channels, closer: rc}, format, nil
}

// oggStream implements beep.StreamSeekCloser over decoded Vorbis packets.
type oggStream struct {
	ogg      *oggReader
	dec      *vorbis.Decoder
	channels int
	closer   io.Closer

	page     *oggPage
	next     int
	pcm      []float32
	pcmPos   int
	skip     int64
	position int64
	err      error
}

func (s *oggStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if s.pcmPos+s.channels <= len(s.pcm) {
			frame := s.pcm[s.pcmPos : s.pcmPos+s.channels]
			s.pcmPos += s.channels
			if s.skip > 0 {
				s.skip--
				continue
			}
			samples[n][0] = float64(frame[0])
			samples[n][1] = samples[n][0]
			if s.channels > 1 {
				samples[n][1] = float64(frame[1])
			}
			n++
			s.position++
			continue
		}
		if !s.refill() {
			return n, n > 0
		}
	}
	return n, true
}

// refill decodes the next packet. Corrupt packets are skipped.
func (s *oggStream) refill() bool {
	for s.page == nil || s.next >= len(s.page.Packets) {
		page, err := s.ogg.readPage()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return false
		}
		s.page, s.next = page, 0
	}
	packet := s.page.Packets[s.next]
	s.next++

	pcm, err := s.dec.Decode(packet)
	if err != nil {
		pcm = nil
	}
	s.pcm, s.pcmPos = pcm, 0
	return true
}

func (s *oggStream) Err() error    { return s.err }
func (s *oggStream) Len() int      { return int(s.ogg.duration()) }
func (s *oggStream) Position() int { return int(s.position) }

func (s *oggStream) Seek(p int) error {
	target := int64(min(max(p, 0), s.Len()))
	resume, err := s.ogg.seekToGranule(target)
	if err != nil {
		return err
	}
	s.dec.Clear()
	s.page, s.next = nil, 0
	s.pcm, s.pcmPos = nil, 0
	s.skip = target - resume
	s.position = target
	s.err = nil
	return nil
}

func (s *oggStream) Close() error {
	return s.closer.Close()
}
