package render

import (
	"encoding/json"
	"io"

	"github.com/randlee/roslyn-diff-sub001/changes"
)

// JSON renders a result as indented JSON, one document per result.
type JSON struct{}

func NewJSON() JSON { return JSON{} }

func (JSON) Render(w io.Writer, res *changes.DiffResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
