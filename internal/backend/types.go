package backend

import (
	"bytes"
	"encoding/json"
)

// Text is a JSON scalar kept as display text. Strings are unquoted, numbers
// and booleans keep their literal form, null becomes empty.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

// String returns the text.
func (t Text) String() string { return string(t) }

// UnitInfo is the body of GET {base}/info. Prefix backends fill
// Magnification, unit backends fill Dimension.
type UnitInfo struct {
	Name          Text `json:"name"`
	Symbol        Text `json:"symbol"`
	Magnification Text `json:"magnification"`
	Dimension     Text `json:"dimension"`
	Desc          Text `json:"desc"`
}

// Conversion is the body of GET {base}/result.
type Conversion struct {
	Result  Text `json:"result"`
	Formula Text `json:"formula"`
}
