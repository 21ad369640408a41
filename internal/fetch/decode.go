package fetch

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeBody converts a response body to UTF-8 based on the charset
// parameter of the Content-Type header. Retail sites in the target
// locale still serve ISO-8859-1/Windows-1252 pages, and currency
// symbols are exactly the bytes that break without decoding.
//
// Decoding is best effort: an unknown charset or a transform error
// returns the body unchanged so extraction can still attempt a pass.
func decodeBody(body []byte, contentType string) []byte {
	if contentType == "" {
		return body
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}

	name := strings.ToLower(params["charset"])
	if name == "" || name == "utf-8" || name == "utf8" {
		return body
	}

	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil || enc == unicode.UTF8 {
		return body
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return body
	}
	return decoded
}
