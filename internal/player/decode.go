package player

import (
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

const (
	formatMP3  = "mp3"
	formatFLAC = "flac"
	formatWAV  = "wav"
	formatOgg  = "ogg"
)

// detectFormat picks a decoder from the URL extension, then the content type.
// Untyped sources are assumed to be mp3, the common podcast enclosure.
func detectFormat(src, contentType string) (string, error) {
	if u, err := url.Parse(src); err == nil {
		switch ext := strings.ToLower(path.Ext(u.Path)); ext {
		case ".mp3":
			return formatMP3, nil
		case ".flac":
			return formatFLAC, nil
		case ".wav":
			return formatWAV, nil
		case ".ogg", ".oga":
			return formatOgg, nil
		case ".m4a", ".mp4", ".aac", ".opus":
			return "", fmt.Errorf("unsupported format: %s", ext)
		}
	}

	mt, _, _ := mime.ParseMediaType(contentType)
	switch strings.ToLower(mt) {
	case "audio/flac", "audio/x-flac":
		return formatFLAC, nil
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return formatWAV, nil
	case "audio/ogg", "audio/vorbis", "application/ogg":
		return formatOgg, nil
	case "audio/mp4", "audio/x-m4a", "audio/aac", "audio/opus":
		return "", fmt.Errorf("unsupported format: %s", mt)
	}
	return formatMP3, nil
}

func decode(kind string, rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch kind {
	case formatOgg:
		return decodeOgg(rc)
	case formatFLAC:
		return flac.Decode(rc)
	case formatWAV:
		return wav.Decode(rc)
	default:
		return decodeMP3(rc, rc)
	}
}
