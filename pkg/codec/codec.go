package codec

import (
	"github.com/yndnr/savevault-go/pkg/errs"
)

// Serialization format names.
const (
	FormatBinary      = "binary"
	FormatTaggedText  = "tagged-text"
	FormatCompactText = "compact-text"
)

// Codec encodes and decodes values of the supported shapes.
type Codec interface {
	// Name returns the format name used in configuration and diagnostics.
	Name() string
	// Encode serializes v into bytes.
	Encode(v any) ([]byte, error)
	// Decode deserializes data into target, which must be a pointer.
	Decode(data []byte, target any) error
}

// New returns the codec registered under format.
func New(format string) (Codec, error) {
	switch format {
	case FormatBinary:
		return Binary{}, nil
	case FormatTaggedText:
		return TaggedText{}, nil
	case FormatCompactText:
		return CompactText{}, nil
	default:
		return nil, errs.ErrUnknownFormat.WithDetails(format)
	}
}

// Formats lists every supported format name.
func Formats() []string {
	return []string{FormatBinary, FormatTaggedText, FormatCompactText}
}

// Transcode decodes data with from and re-encodes the resulting dynamic value
// with to. No type information is needed, so it works on any stored record.
func Transcode(data []byte, from, to Codec) ([]byte, error) {
	var v any
	if err := from.Decode(data, &v); err != nil {
		return nil, err
	}
	return to.Encode(v)
}
