package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LooseInt is a number from a loosely typed caller. It accepts a JSON number,
// a string, or a bool, and coerces on Int: anything non-numeric is 0.
type LooseInt string

// Int returns a pointer to the LooseInt holding n.
func Int(n int) *LooseInt {
	v := LooseInt(strconv.Itoa(n))
	return &v
}

// IntString returns a pointer to the LooseInt holding s unparsed.
func IntString(s string) *LooseInt {
	v := LooseInt(s)
	return &v
}

// Int coerces the value. Fractions truncate toward zero; a nil receiver,
// blank, non-numeric, or non-finite value is 0; true is 1.
func (v *LooseInt) Int() int {
	if v == nil {
		return 0
	}
	s := strings.TrimSpace(string(*v))
	switch s {
	case "true":
		return 1
	case "", "false":
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// UnmarshalJSON accepts numbers, strings, bools and null.
func (v *LooseInt) UnmarshalJSON(data []byte) error {
	s, err := looseScalar(data)
	if err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	*v = LooseInt(s)
	return nil
}

// MarshalJSON writes the coerced number.
func (v LooseInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(v.Int())), nil
}

// LooseBool is a flag from a loosely typed caller. It accepts a JSON bool,
// number, or string.
type LooseBool string

// Bool returns a pointer to the LooseBool holding b.
func Bool(b bool) *LooseBool {
	v := LooseBool(strconv.FormatBool(b))
	return &v
}

// BoolString returns a pointer to the LooseBool holding s unparsed.
func BoolString(s string) *LooseBool {
	v := LooseBool(s)
	return &v
}

// Bool coerces the value. "true", "yes", "on" and non-zero numbers are true;
// a nil receiver and everything else is false.
func (v *LooseBool) Bool() bool {
	if v == nil {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(string(*v)))
	switch s {
	case "true", "yes", "on", "y":
		return true
	case "", "false", "no", "off", "n":
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f != 0 && !math.IsNaN(f)
}

// UnmarshalJSON accepts bools, numbers, strings and null.
func (v *LooseBool) UnmarshalJSON(data []byte) error {
	s, err := looseScalar(data)
	if err != nil {
		return fmt.Errorf("favorite: %w", err)
	}
	*v = LooseBool(s)
	return nil
}

// MarshalJSON writes the coerced bool.
func (v LooseBool) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(v.Bool())), nil
}

// looseScalar returns the text of a JSON scalar. Strings are unquoted, null is
// empty, objects and arrays are rejected.
func looseScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("expected a scalar, got %s", data)
	}
	return string(data), nil
}

// Tags is an ordered tag list. In JSON it may be given as an array of
// strings or as one comma-delimited string.
type Tags []string

// TagsOf returns a pointer to the tag list, for building a CafeInput.
func TagsOf(tags ...string) *Tags {
	t := Tags(tags)
	return &t
}

// TagsFromString returns a pointer to the tags parsed from a comma-delimited
// string.
func TagsFromString(s string) *Tags {
	t := Tags(ParseTags(s))
	return &t
}

// Normalized returns the trimmed, non-empty tags in order. The result is
// never nil. Duplicates are kept.
func (t *Tags) Normalized() []string {
	if t == nil {
		return []string{}
	}
	return NormalizeTags(*t)
}

// UnmarshalJSON accepts an array of strings, a comma-delimited string, or null.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		*t = ParseTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = list
	return nil
}

// ParseTags splits a comma-delimited string into normalized tags.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims each tag and drops the empty ones, keeping order and
// duplicates. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
