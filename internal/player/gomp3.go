package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// go-mp3 always produces interleaved 16-bit stereo.
const mp3FrameBytes = 4

// mp3Stream adapts a go-mp3 decoder to beep.StreamSeekCloser.
type mp3Stream struct {
	dec    *mp3.Decoder
	closer io.Closer
	buf    []byte
	err    error
}

func decodeMP3(r io.Reader, closer io.Closer) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Stream{dec: dec, closer: closer, buf: make([]byte, 8192)}, format, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}

	want := len(samples) * mp3FrameBytes
	if len(s.buf) < want {
		s.buf = make([]byte, want)
	}

	read, err := io.ReadFull(s.dec, s.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}

	n := read / mp3FrameBytes
	for i := range n {
		frame := s.buf[i*mp3FrameBytes:]
		samples[i][0] = pcm16(frame[0:2])
		samples[i][1] = pcm16(frame[2:4])
	}
	return n, n > 0
}

func pcm16(b []byte) float64 {
	return float64(int16(binary.LittleEndian.Uint16(b))) / 32768.0 //nolint:gosec // PCM sample
}

func (s *mp3Stream) Err() error { return s.err }

func (s *mp3Stream) Len() int {
	return max(int(s.dec.SampleCount()), 0)
}

func (s *mp3Stream) Position() int {
	return int(s.dec.SamplePosition())
}

func (s *mp3Stream) Seek(p int) error {
	p = min(max(p, 0), s.Len())
	if err := s.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error {
	return s.closer.Close()
}
