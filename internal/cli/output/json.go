package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders command views and map entries as JSON. Stored
// values are printed verbatim, so HTML escaping is off.
type JSONFormatter struct{}

// Format formats data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}
