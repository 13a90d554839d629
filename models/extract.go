package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// FallbackField is the field name raw LLM output is wrapped under when the
// reply cannot be parsed as structured data.
const FallbackField = "extracted_text"

// Kind discriminates the shapes an extracted value can take.
type Kind int

const (
	// KindText is a scalar value (strings, numbers, booleans and null all
	// normalise to text).
	KindText Kind = iota

	// KindList is an ordered sequence of values.
	KindList

	// KindMap is a field-name → value mapping with preserved field order.
	KindMap
)

// Value is a tagged union over the shapes an LLM reply can contain.
// Exactly one of Text, Items or Fields is meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Text   string
	Items  []Value
	Fields []Field
}

// Field is a single named entry of a KindMap value. A slice of Fields keeps
// the key order of the original JSON, which encoding/json maps would lose.
type Field struct {
	Key   string
	Value Value
}

// ExtractedData is the root mapping produced by parsing an LLM reply.
// Its shape is open-ended; only the JSON-object structure is guaranteed.
type ExtractedData struct {
	Fields []Field
}

// TextValue creates a scalar Value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// TextData wraps raw reply text under a single fallback field. Used when the
// provider reply is not valid JSON.
func TextData(raw string) *ExtractedData {
	return &ExtractedData{Fields: []Field{{Key: FallbackField, Value: TextValue(raw)}}}
}

// ParseExtractedData parses a JSON object into an ExtractedData, preserving
// field order. Non-object roots are rejected so the caller can fall back to
// TextData.
func ParseExtractedData(raw []byte) (*ExtractedData, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindMap {
		return nil, fmt.Errorf("extracted data: root is not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("extracted data: trailing data after JSON object")
	}
	return &ExtractedData{Fields: v.Fields}, nil
}

// FieldByKey returns the value of the named field of a KindMap value.
func (v Value) FieldByKey(key string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// UniformHeaders reports whether a KindList value is a non-empty list of
// mappings and, if so, returns the first record's field names in order.
// Formatters use this to decide between table and bullet rendering.
func (v Value) UniformHeaders() ([]string, bool) {
	if v.Kind != KindList || len(v.Items) == 0 {
		return nil, false
	}
	for _, item := range v.Items {
		if item.Kind != KindMap {
			return nil, false
		}
	}
	headers := make([]string, 0, len(v.Items[0].Fields))
	for _, f := range v.Items[0].Fields {
		headers = append(headers, f.Key)
	}
	return headers, true
}

// decodeValue reads one complete JSON value from the decoder.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := Value{Kind: KindMap}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("extracted data: non-string object key %v", keyTok)
				}
				fv, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Fields = append(v.Fields, Field{Key: key, Value: fv})
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return Value{}, err
			}
			return v, nil

		case '[':
			v := Value{Kind: KindList}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, item)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return Value{}, err
			}
			return v, nil
		}
		return Value{}, fmt.Errorf("extracted data: unexpected delimiter %v", t)

	case string:
		return TextValue(t), nil
	case json.Number:
		return TextValue(t.String()), nil
	case bool:
		return TextValue(strconv.FormatBool(t)), nil
	case nil:
		return TextValue(""), nil
	}
	return Value{}, fmt.Errorf("extracted data: unexpected token %v", tok)
}

// MarshalJSON renders the value back to JSON, keeping mapping field order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON parses any JSON value into the tagged union.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON renders the root mapping as a JSON object.
func (d ExtractedData) MarshalJSON() ([]byte, error) {
	return Value{Kind: KindMap, Fields: d.Fields}.MarshalJSON()
}

// UnmarshalJSON parses a JSON object, preserving field order.
func (d *ExtractedData) UnmarshalJSON(data []byte) error {
	parsed, err := ParseExtractedData(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindMap:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := encodeValue(buf, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case KindList:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		text, err := json.Marshal(v.Text)
		if err != nil {
			return err
		}
		buf.Write(text)
		return nil
	}
}
