package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/fumiama/go-docx"
)

// DocReport renders a nested analysis structure as a .docx report:
// keys in bold, values beneath them, nesting shown by indentation.
func DocReport(title string, data map[string]any) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	w.AddParagraph().AddText(title).Size("32").Bold()
	addMap(w, data, 0)

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	return buf.Bytes(), nil
}

func addMap(w *docx.Docx, data map[string]any, indent int) {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		w.AddParagraph().AddText(pad(indent) + key + ":").Bold()
		addValue(w, data[key], indent+1)
	}
}

func addValue(w *docx.Docx, value any, indent int) {
	switch v := value.(type) {
	case map[string]any:
		addMap(w, v, indent)
	case []any:
		for _, item := range v {
			if nested, ok := item.(map[string]any); ok {
				addMap(w, nested, indent)
				continue
			}
			w.AddParagraph().AddText(pad(indent) + "- " + scalarText(item))
		}
	default:
		w.AddParagraph().AddText(pad(indent) + scalarText(v))
	}
}

func scalarText(v any) string {
	if v == nil {
		return "Not Found"
	}
	return fmt.Sprintf("%v", v)
}

func pad(indent int) string {
	return strings.Repeat("    ", indent)
}
