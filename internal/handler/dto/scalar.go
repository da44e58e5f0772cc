package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var (
	errNotText    = errors.New("value must be a string or number")
	errNotInteger = errors.New("value must be an integer")
)

// Text decodes a JSON string or number as a string. Form-style clients send
// years both ways.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errNotText
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = Text(n.String())
		return nil
	default:
		return errNotText
	}
}

// Ptr returns the value as *string, nil for a nil receiver.
func (t *Text) Ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

// ID decodes a JSON integer or a string holding one.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	var raw Text
	if err := raw.UnmarshalJSON(data); err != nil {
		return errNotInteger
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return errNotInteger
	}
	*id = ID(n)
	return nil
}

// Ptr returns the value as *int64, nil for a nil receiver.
func (id *ID) Ptr() *int64 {
	if id == nil {
		return nil
	}
	n := int64(*id)
	return &n
}

// Field is a Text that remembers whether its key was sent. An explicit null
// counts as sent with an empty value, so it fails presence validation rather
// than leaving the stored value alone.
type Field struct {
	Present bool
	Value   string
}

// UnmarshalJSON implements json.Unmarshaler. It is called for null too
// because Field is never a pointer in request structs.
func (f *Field) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = ""
		return nil
	}
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	f.Value = string(t)
	return nil
}

// Ptr returns the value as *string, nil when the key was absent.
func (f Field) Ptr() *string {
	if !f.Present {
		return nil
	}
	s := f.Value
	return &s
}
