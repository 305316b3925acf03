// Package formatter serializes converted units as JSON Lines: one compact
// JSON object per line, with an optional key re-casing pass.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mwhite/xml2jsonl/internal/errors"
	"github.com/mwhite/xml2jsonl/internal/models"
)

// KeyStyle selects how object keys are re-cased before encoding.
type KeyStyle string

const (
	KeyStyleNone  KeyStyle = "none"
	KeyStyleSnake KeyStyle = "snake"
	KeyStyleCamel KeyStyle = "camel"
	KeyStyleKebab KeyStyle = "kebab"
)

// ParseKeyStyle validates a key style name from a flag or config value.
func ParseKeyStyle(s string) (KeyStyle, error) {
	switch KeyStyle(s) {
	case KeyStyleNone, KeyStyleSnake, KeyStyleCamel, KeyStyleKebab:
		return KeyStyle(s), nil
	case "":
		return KeyStyleNone, nil
	}
	return "", errors.NewConfigError(
		fmt.Sprintf("unknown key style %q (want none, snake, camel or kebab)", s), nil)
}

// Formatter writes units to an output stream in JSON Lines format.
type Formatter struct {
	enc   *json.Encoder
	style KeyStyle
}

// New creates a Formatter writing to w. HTML escaping is disabled so that
// text content like "R&D <lab>" stays readable in the output.
func New(w io.Writer, style KeyStyle) *Formatter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Formatter{enc: enc, style: style}
}

// WriteUnit encodes one unit as a single output line.
func (f *Formatter) WriteUnit(unit models.Value) error {
	if f.style != KeyStyleNone {
		unit = Recase(unit, f.style)
	}
	if err := f.enc.Encode(unit); err != nil {
		return errors.NewOutputError("failed to write JSON line", err)
	}
	return nil
}

// Recase rewrites object keys recursively in the requested style. Reserved
// colon-prefixed keys are left alone so raw (non-simplified) records stay
// machine-recognizable.
func Recase(value models.Value, style KeyStyle) models.Value {
	switch v := value.(type) {
	case models.Object:
		out := make(models.Object, len(v))
		for key, val := range v {
			if !strings.HasPrefix(key, ":") {
				key = recaseKey(key, style)
			}
			out[key] = Recase(val, style)
		}
		return out
	case models.Array:
		for i, val := range v {
			v[i] = Recase(val, style)
		}
		return v
	default:
		return v
	}
}

func recaseKey(key string, style KeyStyle) string {
	switch style {
	case KeyStyleSnake:
		return strcase.ToSnake(key)
	case KeyStyleCamel:
		return strcase.ToLowerCamel(key)
	case KeyStyleKebab:
		return strcase.ToKebab(key)
	}
	return key
}
