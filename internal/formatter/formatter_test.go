package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite/xml2jsonl/internal/models"
)

func TestWriteUnit_OneLinePerUnit(t *testing.T) {
	var buf bytes.Buffer
	fm := New(&buf, KeyStyleNone)

	require.NoError(t, fm.WriteUnit(models.Object{"name": "Alice"}))
	require.NoError(t, fm.WriteUnit(models.Object{"name": "Bob"}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"name":"Alice"}`, lines[0])
	assert.JSONEq(t, `{"name":"Bob"}`, lines[1])
}

func TestWriteUnit_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	fm := New(&buf, KeyStyleNone)

	require.NoError(t, fm.WriteUnit(models.Object{"note": "R&D <lab>"}))
	assert.Equal(t, "{\"note\":\"R&D <lab>\"}\n", buf.String())
}

func TestWriteUnit_StableKeyOrder(t *testing.T) {
	// encoding/json sorts map keys, which is what keeps output lines
	// byte-stable across runs.
	var buf bytes.Buffer
	fm := New(&buf, KeyStyleNone)

	require.NoError(t, fm.WriteUnit(models.Object{"b": "2", "a": "1", "c": "3"}))
	assert.Equal(t, "{\"a\":\"1\",\"b\":\"2\",\"c\":\"3\"}\n", buf.String())
}

func TestParseKeyStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    KeyStyle
		wantErr bool
	}{
		{input: "none", want: KeyStyleNone},
		{input: "", want: KeyStyleNone},
		{input: "snake", want: KeyStyleSnake},
		{input: "camel", want: KeyStyleCamel},
		{input: "kebab", want: KeyStyleKebab},
		{input: "screaming", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("style "+tt.input, func(t *testing.T) {
			got, err := ParseKeyStyle(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecase_Styles(t *testing.T) {
	in := models.Object{"FirstName": "Ada", "home-address": models.Object{"PostCode": "X1"}}

	snake := Recase(in, KeyStyleSnake).(models.Object)
	assert.Contains(t, snake, "first_name")
	assert.Contains(t, snake["home_address"], "post_code")

	camel := Recase(in, KeyStyleCamel).(models.Object)
	assert.Contains(t, camel, "firstName")

	kebab := Recase(in, KeyStyleKebab).(models.Object)
	assert.Contains(t, kebab, "first-name")
}

func TestRecase_ReservedKeysUntouched(t *testing.T) {
	in := models.Object{
		models.KeyTag:   "SomeTag",
		models.KeyAttrs: models.Object{"UserID": "1"},
		models.KeyText:  "body",
	}

	out := Recase(in, KeyStyleSnake).(models.Object)
	assert.Equal(t, "SomeTag", out[models.KeyTag])
	assert.Equal(t, "body", out[models.KeyText])
	attrs := out[models.KeyAttrs].(models.Object)
	assert.Contains(t, attrs, "user_id")
}

func TestRecase_Arrays(t *testing.T) {
	in := models.Array{
		models.Object{"FirstName": "Ada"},
		"plain string",
	}

	out := Recase(in, KeyStyleSnake).(models.Array)
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "first_name")
	assert.Equal(t, "plain string", out[1])
}
