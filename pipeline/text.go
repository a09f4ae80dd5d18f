package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var errInvalidUTF8 = errors.New("body is not valid utf-8")

// DecodeText converts body to a string. An empty encoding, or any UTF-8
// label, decodes UTF-8 and strips a leading byte order mark; bytes that are
// not valid UTF-8 are an error. Other names are resolved with the WHATWG
// encoding labels.
func DecodeText(body []byte, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8", "utf-8-sig":
		if !utf8.Valid(body) {
			return "", errInvalidUTF8
		}
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(body)
		if err != nil {
			return "", fmt.Errorf("failed to decode utf-8 body: %w", err)
		}
		return string(out), nil
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", fmt.Errorf("unknown response encoding %q: %w", encoding, err)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s body: %w", encoding, err)
	}
	return string(out), nil
}
