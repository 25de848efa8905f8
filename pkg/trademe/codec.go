package trademe

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Namespace is the XML namespace of every Trade Me v1 document.
const Namespace = "http://api.trademe.co.nz/v1"

// Marshal encodes a request record as an XML document. Field names and
// optional-field omission come from the record's xml struct tags. A nil
// record yields an empty body.
func Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encoding %T as XML: %w", v, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an XML response into a T. An empty or whitespace-only
// body decodes to the zero T; anything that does not parse as a T returns a
// *MalformedResponseError.
func Unmarshal[T any](data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	if err := xml.Unmarshal(data, &out); err != nil {
		return out, &MalformedResponseError{
			Type:    fmt.Sprintf("%T", out),
			Snippet: snippet(data),
			Err:     err,
		}
	}
	return out, nil
}
