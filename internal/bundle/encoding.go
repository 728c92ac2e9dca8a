package bundle

import (
	"github.com/corpuskit/corpus/internal/errors"
)

// Mode selects the textual transformation applied to file contents before
// framing. Exactly one mode applies per bundle.
type Mode int

const (
	// ModePlain copies file contents verbatim.
	ModePlain Mode = iota
	// ModeCompressed strips trailing whitespace and collapses blank-line runs.
	ModeCompressed
	// ModeMaxCompressed additionally strips comments where the language is
	// recognized, then applies the compressed transformation.
	ModeMaxCompressed
)

// String returns the mode's wire name.
func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeCompressed:
		return "compressed"
	case ModeMaxCompressed:
		return "max-compressed"
	default:
		return "unknown"
	}
}

// Encoding describes the full output encoding of a bundle: the textual mode
// plus optional gzip and base64 wrapping layers.
type Encoding struct {
	Mode   Mode
	Gzip   bool
	Base64 bool
}

// NewEncoding validates an encoding combination. Base64 output is only
// defined over a gzip payload.
func NewEncoding(mode Mode, gzipOut, base64Out bool) (Encoding, error) {
	if mode < ModePlain || mode > ModeMaxCompressed {
		return Encoding{}, errors.New(errors.ErrCodeInvalidEncoding, "unknown encoding mode", nil)
	}
	if base64Out && !gzipOut {
		return Encoding{}, errors.New(errors.ErrCodeInvalidEncoding, "base64 encoding requires gzip", nil).
			WithSuggestion("enable gzip when requesting base64 output")
	}
	return Encoding{Mode: mode, Gzip: gzipOut, Base64: base64Out}, nil
}

// ParseEncoding maps a wire name to an Encoding. Recognized names are plain,
// compressed, max-compressed, gzip and base64.
func ParseEncoding(name string) (Encoding, error) {
	switch name {
	case "plain", "":
		return Encoding{Mode: ModePlain}, nil
	case "compressed":
		return Encoding{Mode: ModeCompressed}, nil
	case "max-compressed":
		return Encoding{Mode: ModeMaxCompressed}, nil
	case "gzip":
		return Encoding{Mode: ModePlain, Gzip: true}, nil
	case "base64":
		return Encoding{Mode: ModePlain, Gzip: true, Base64: true}, nil
	default:
		return Encoding{}, errors.New(errors.ErrCodeInvalidEncoding, "unknown encoding: "+name, nil).
			WithDetail("encoding", name).
			WithSuggestion("valid encodings are plain, compressed, max-compressed, gzip, base64")
	}
}

// Label returns the manifest name for this encoding. The outermost layer
// wins: base64 over gzip over the textual mode.
func (e Encoding) Label() string {
	if e.Base64 {
		return "base64"
	}
	if e.Gzip {
		return "gzip"
	}
	return e.Mode.String()
}

// Textual reports whether the serialized bundle is directly readable without
// an unwrap step. Base64 output is ASCII but still opaque.
func (e Encoding) Textual() bool {
	return !e.Gzip && !e.Base64
}
