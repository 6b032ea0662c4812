package auth

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"strings"
)

// MaxPrincipalBytes bounds the raw principal length.
const MaxPrincipalBytes = 29

var ErrInvalidPrincipal = errors.New("invalid principal")

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ParsePrincipal checks the textual form of an Internet Identity principal
// and returns its raw bytes. The text is lower-case base32 of a big-endian
// CRC32 of the raw bytes followed by the raw bytes, split into groups of
// five by dashes. Only the canonical spelling is accepted.
func ParsePrincipal(text string) ([]byte, error) {
	if text == "" {
		return nil, ErrInvalidPrincipal
	}

	decoded, err := principalEncoding.DecodeString(strings.ToUpper(strings.ReplaceAll(text, "-", "")))
	if err != nil || len(decoded) < crc32.Size {
		return nil, ErrInvalidPrincipal
	}

	raw := decoded[crc32.Size:]
	if len(raw) > MaxPrincipalBytes {
		return nil, ErrInvalidPrincipal
	}
	if binary.BigEndian.Uint32(decoded[:crc32.Size]) != crc32.ChecksumIEEE(raw) {
		return nil, ErrInvalidPrincipal
	}
	if FormatPrincipal(raw) != text {
		return nil, ErrInvalidPrincipal
	}
	return raw, nil
}

// FormatPrincipal renders raw principal bytes in the canonical text form.
func FormatPrincipal(raw []byte) string {
	buf := make([]byte, crc32.Size+len(raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(raw))
	copy(buf[crc32.Size:], raw)

	enc := strings.ToLower(principalEncoding.EncodeToString(buf))

	var b strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(enc[i:min(i+5, len(enc))])
	}
	return b.String()
}
