package binding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
)

// SourceEncoding identifies the on-disk encoding detected for an opened
// file, so Save can decide whether to re-add a stripped BOM.
type SourceEncoding int

const (
	// EncodingUTF8 is UTF-8 without a BOM (the assumed default).
	EncodingUTF8 SourceEncoding = iota
	// EncodingUTF8BOM is UTF-8 with a byte-order mark.
	EncodingUTF8BOM
	// EncodingUTF16LE is UTF-16 little-endian.
	EncodingUTF16LE
	// EncodingUTF16BE is UTF-16 big-endian.
	EncodingUTF16BE
	// EncodingLatin1 is ISO-8859-1, the fallback for content that isn't
	// valid UTF-8 and has no recognized BOM.
	EncodingLatin1
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// detectAndDecode inspects raw file bytes for a BOM, falls back to Latin-1
// when the content isn't valid UTF-8, and returns the content decoded to
// UTF-8 along with the encoding that was detected (so Save can round-trip
// the BOM).
func detectAndDecode(raw []byte) (string, SourceEncoding, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), EncodingUTF8BOM, nil

	case bytes.HasPrefix(raw, bomUTF16LE):
		text, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return "", 0, err
		}
		return string(text), EncodingUTF16LE, nil

	case bytes.HasPrefix(raw, bomUTF16BE):
		text, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return "", 0, err
		}
		return string(text), EncodingUTF16BE, nil

	case utf8.Valid(raw):
		return string(raw), EncodingUTF8, nil

	default:
		text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", 0, err
		}
		return string(text), EncodingLatin1, nil
	}
}

// encodeForSave reverses detectAndDecode: it re-adds a BOM, or re-encodes
// to UTF-16/Latin-1, matching how the file was originally encoded.
func encodeForSave(text string, enc SourceEncoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8BOM:
		return append(append([]byte{}, bomUTF8...), text...), nil
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	case EncodingLatin1:
		return charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	default:
		return []byte(text), nil
	}
}

// isBinary marks content as binary when a null byte appears anywhere in
// the first 8KB, or more than 10% of that sample is non-text control bytes.
func isBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	checkLen := len(content)
	if checkLen > 8192 {
		checkLen = 8192
	}
	sample := content[:checkLen]

	if bytes.Contains(sample, []byte{0}) {
		return true
	}

	nonText := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			nonText++
		}
	}
	return float64(nonText)/float64(checkLen) > 0.1
}

// detectLineEnding returns the dominant line-ending style in content: CRLF
// when CRLF occurs at least as often as each of LF and lone CR, CR when lone
// CR outnumbers both, and LF otherwise (including empty content, content with
// no terminators, and a tie between LF and lone CR). The core never rewrites
// existing terminators, so this value is metadata only — see
// buffer.LineEnding.
func detectLineEnding(content []byte) buffer.LineEnding {
	var lf, crlf, cr int
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		case '\n':
			lf++
		}
	}

	if crlf >= lf && crlf >= cr && crlf > 0 {
		return buffer.LineEndingCRLF
	}
	if cr > lf && cr > crlf {
		return buffer.LineEndingCR
	}
	return buffer.LineEndingLF
}
