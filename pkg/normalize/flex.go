package normalize

import (
	"encoding/json"
	"strconv"
	"time"
)

// The flex types absorb the loosely-typed upstream JSON: ids arrive as
// numbers or strings, timestamps as epoch seconds or ISO strings, counters
// occasionally as strings. Their unmarshalers never return an error; a value
// that cannot be interpreted decays to the zero default.

// flexString decodes a string, a bare number (kept as its literal token), or
// anything else as "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if json.Unmarshal(b, &v) == nil {
			*s = flexString(v)
		} else {
			*s = ""
		}
		return nil
	}
	if b[0] == '{' || b[0] == '[' || string(b) == "true" || string(b) == "false" {
		*s = ""
		return nil
	}
	// Bare number: keep the literal token so large ids survive intact
	*s = flexString(b)
	return nil
}

// flexInt decodes a number, a numeric string, or anything else as 0.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if json.Unmarshal(b, &s) == nil {
			if v, err := strconv.ParseInt(s, 10, 64); err == nil {
				*n = flexInt(v)
				return nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				*n = flexInt(f)
				return nil
			}
		}
		*n = 0
		return nil
	}
	var f float64
	if json.Unmarshal(b, &f) == nil {
		*n = flexInt(f)
	} else {
		*n = 0
	}
	return nil
}

// flexBool decodes a bool or anything else as false.
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	var parsed bool
	if json.Unmarshal(b, &parsed) == nil {
		*v = flexBool(parsed)
	} else {
		*v = false
	}
	return nil
}

// flexTime decodes an epoch-seconds number into an ISO-8601 string, passes
// string values through unchanged, and decays everything else to "".
type flexTime string

func (t *flexTime) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if json.Unmarshal(b, &s) == nil {
			*t = flexTime(s)
		} else {
			*t = ""
		}
		return nil
	}
	var secs float64
	if json.Unmarshal(b, &secs) == nil {
		*t = flexTime(time.Unix(int64(secs), 0).UTC().Format(time.RFC3339))
	} else {
		*t = ""
	}
	return nil
}
