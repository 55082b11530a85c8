package enum

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the charset ERP exports are read with unless told
// otherwise. Labels resolve through the WHATWG encoding index, so "latin1"
// and "iso-8859-1" decode as windows-1252, exactly as a browser would.
const DefaultEncoding = "latin1"

// DecodeText converts raw feed bytes to text using a charset label such as
// "latin1", "windows-1252" or "utf-8". A leading byte order mark is dropped.
func DecodeText(content []byte, label string) (string, error) {
	if label == "" {
		label = DefaultEncoding
	}

	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", label, err)
	}

	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decoding %s text: %w", label, err)
	}

	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}

// ValidateEncoding reports whether a charset label is known.
func ValidateEncoding(label string) error {
	if label == "" {
		return nil
	}
	if _, err := htmlindex.Get(strings.TrimSpace(label)); err != nil {
		return fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	return nil
}
