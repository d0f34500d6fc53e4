package layout

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeJSON 将布局结果以缩进 JSON 写出，便于调试或可视化。
func EncodeJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// WriteDebugJSON writes the layout result as JSON to path.
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
