// Package payload locates and decodes the embedded rehydration payload a
// TikTok video page ships for client-side state reconstruction.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Type tags the variant held by a Value.
type Type int

// JSON value variants.
const (
	TypeNull Type = iota
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeObject
)

// Value is a decoded JSON node. The zero Value is null. Accessors never
// panic; lookups on the wrong variant or a missing key yield the null
// Value, and the *Or helpers substitute defaults so callers can express
// "every field optional" as a chain of lookups.
type Value struct {
	typ Type
	b   bool
	num json.Number
	str string
	arr []Value
	obj map[string]Value
}

// Parse decodes text as a JSON document into a Value tree. Numbers are kept
// in their source representation so 64-bit identifiers survive intact.
func Parse(text string) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("decode payload: %w", err)
	}
	return fromAny(raw), nil
}

func fromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case bool:
		return Value{typ: TypeBool, b: v}
	case json.Number:
		return Value{typ: TypeNumber, num: v}
	case string:
		return Value{typ: TypeString, str: v}
	case []any:
		arr := make([]Value, len(v))
		for i, item := range v {
			arr[i] = fromAny(item)
		}
		return Value{typ: TypeArray, arr: arr}
	case map[string]any:
		obj := make(map[string]Value, len(v))
		for k, item := range v {
			obj[k] = fromAny(item)
		}
		return Value{typ: TypeObject, obj: obj}
	default:
		return Value{}
	}
}

// Type returns the variant tag.
func (v Value) Type() Type {
	return v.typ
}

// IsNull reports whether the value is JSON null or absent.
func (v Value) IsNull() bool {
	return v.typ == TypeNull
}

// Get returns the named object member, or the null Value when v is not an
// object or the key is absent.
func (v Value) Get(key string) Value {
	if v.typ != TypeObject {
		return Value{}
	}
	return v.obj[key]
}

// Path walks nested object members and reports whether every segment was
// present.
func (v Value) Path(keys ...string) (Value, bool) {
	cur := v
	for _, key := range keys {
		if cur.typ != TypeObject {
			return Value{}, false
		}
		next, ok := cur.obj[key]
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Index returns the i-th array element, or the null Value when out of range
// or v is not an array.
func (v Value) Index(i int) Value {
	if v.typ != TypeArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Len returns the element count for arrays and member count for objects.
func (v Value) Len() int {
	switch v.typ {
	case TypeArray:
		return len(v.arr)
	case TypeObject:
		return len(v.obj)
	default:
		return 0
	}
}

// StringOr returns the string content, or def for any other variant.
func (v Value) StringOr(def string) string {
	if v.typ != TypeString {
		return def
	}
	return v.str
}

// IntOr coerces a number or numeric string to int64, returning def when the
// value is absent or not numeric. Fractional numbers are truncated.
func (v Value) IntOr(def int64) int64 {
	switch v.typ {
	case TypeNumber:
		if n, err := v.num.Int64(); err == nil {
			return n
		}
		if f, err := v.num.Float64(); err == nil {
			return int64(f)
		}
		return def
	case TypeString:
		if n, err := strconv.ParseInt(v.str, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.str, 64); err == nil {
			return int64(f)
		}
		return def
	default:
		return def
	}
}

// BoolOr returns the boolean content, or def for any other variant.
func (v Value) BoolOr(def bool) bool {
	if v.typ != TypeBool {
		return def
	}
	return v.b
}
