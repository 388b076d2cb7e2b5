package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Type is the category of a JSON value. It decides how two values found at the
// same path are compared.
type Type int

const (
	TypeNull Type = iota
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeObject
)

// String returns the JSON name of the category
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	}
	return "invalid"
}

// IsContainer reports whether values of this type hold other values
func (t Type) IsContainer() bool {
	return t == TypeArray || t == TypeObject
}

// Value is an immutable JSON value. The zero value is JSON null.
type Value struct {
	typ   Type
	b     bool
	num   string // source literal of a number
	str   string
	items []Value
	obj   *Object
}

// Null returns the JSON null value
func Null() Value {
	return Value{}
}

// Bool wraps a boolean
func Bool(b bool) Value {
	return Value{typ: TypeBool, b: b}
}

// Number wraps a number given as its JSON literal, e.g. "30" or "1.5e3".
// The literal is kept as written so it can be printed back unchanged.
func Number(literal string) Value {
	return Value{typ: TypeNumber, num: literal}
}

// Float wraps a float64 as a number
func Float(f float64) Value {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// Int wraps an int as a number
func Int(i int) Value {
	return Number(strconv.Itoa(i))
}

// String wraps a string
func String(s string) Value {
	return Value{typ: TypeString, str: s}
}

// Array wraps the given elements as a JSON array
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{typ: TypeArray, items: items}
}

// ObjectOf builds an object from members in the given order
func ObjectOf(members ...Member) Value {
	obj := NewObject()
	for _, m := range members {
		obj.Set(m.Key, m.Value)
	}
	return Value{typ: TypeObject, obj: obj}
}

// FromObject wraps an already built Object
func FromObject(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{typ: TypeObject, obj: obj}
}

// Type classifies the value
func (v Value) Type() Type {
	return v.typ
}

// IsNull reports whether v is JSON null
func (v Value) IsNull() bool {
	return v.typ == TypeNull
}

// BoolValue returns the boolean payload; false for other types
func (v Value) BoolValue() bool {
	return v.b
}

// NumberLiteral returns the number exactly as written in the source
func (v Value) NumberLiteral() string {
	return v.num
}

// Float64 returns the numeric value and whether the literal could be parsed
func (v Value) Float64() (float64, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// StringValue returns the string payload; "" for other types
func (v Value) StringValue() string {
	return v.str
}

// Items returns the elements of an array; nil for other types
func (v Value) Items() []Value {
	return v.items
}

// Len returns the number of elements or members of a container, 0 otherwise
func (v Value) Len() int {
	switch v.typ {
	case TypeArray:
		return len(v.items)
	case TypeObject:
		return v.obj.Len()
	}
	return 0
}

// Object returns the members of an object; nil for other types
func (v Value) Object() *Object {
	return v.obj
}

// Equal reports structural equality. Numbers compare by value, strings by
// content, objects regardless of key order and arrays position by position.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeBool:
		return v.b == other.b
	case TypeNumber:
		return numbersEqual(v, other)
	case TypeString:
		return v.str == other.str
	case TypeArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		for _, m := range v.obj.Members() {
			ov, ok := other.obj.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b Value) bool {
	if a.num == b.num {
		return true
	}
	af, aok := a.Float64()
	bf, bok := b.Float64()
	if aok && bok {
		return af == bf
	}
	return false
}

// MarshalJSON writes the value in compact form, keeping object key order
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.typ {
	case TypeNull:
		buf.WriteString("null")
	case TypeBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case TypeNumber:
		buf.WriteString(v.num)
	case TypeString:
		return appendString(buf, v.str)
	case TypeArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case TypeObject:
		buf.WriteByte('{')
		for i, m := range v.obj.Members() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// appendString quotes s without the HTML escaping encoding/json applies by default
func appendString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// Document is a parsed JSON value together with the name of its source
type Document struct {
	Name string
	Root Value
}
