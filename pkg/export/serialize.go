package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/clbanning/mxj/v2"
)

// XML element names.
const (
	XMLRoot    = "selection"
	XMLElement = "relation"
)

func init() {
	// OSM names and tag values routinely contain & and <.
	mxj.XMLEscapeChars(true)
}

// Marshal serializes v in the given format.
func Marshal(v any, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalJSON(v)
	case FormatXML:
		return MarshalXML(v)
	}
	return nil, ValidateFormat(format)
}

// MarshalJSON writes v with a 2-space indent and without HTML escaping, so
// names containing & or < survive unchanged. There is no trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalXML writes v as generic XML with a 4-space indent. A slice becomes
// one <relation> element per entry under a <selection> root; object keys
// become child elements in sorted order. An empty slice yields a bare
// <selection/>. Text is escaped.
func MarshalXML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var body any
	switch g := plain(generic).(type) {
	case []any:
		if len(g) == 0 {
			return []byte("<" + XMLRoot + "/>"), nil
		}
		body = map[string]any{XMLElement: g}
	default:
		body = map[string]any{XMLElement: []any{g}}
	}
	return mxj.Map{XMLRoot: body}.XmlIndent("", "    ")
}

// plain replaces JSON numbers with their literal text, so ids and
// coordinates keep the exact digits of the JSON output.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = plain(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = plain(e)
		}
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	}
	return v
}
