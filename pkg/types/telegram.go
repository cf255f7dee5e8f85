package types

import (
	"encoding/json"
	"strconv"
	"time"
)

type ValueKind uint8

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
)

// Value is a single decoded meter field. The meter emits integers, decimals
// and plain strings depending on the OBIS code, so consumers must check the
// kind instead of assuming one type.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

func IntValue(v int64) Value {
	return Value{kind: KindInt, i: v}
}

func FloatValue(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

func StringValue(v string) Value {
	return Value{kind: KindString, s: v}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) Int() (int64, bool) {
	return v.i, v.kind == KindInt
}

func (v Value) Float() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// AsFloat widens integer values so power math does not care
// whether the meter printed "0" or "0.000".
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

func (v Value) Text() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return v.s
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	default:
		return json.Marshal(v.s)
	}
}

// Telegram is one complete decoded meter message. It is only constructed
// after the frame passed the CRC check and is not mutated afterwards.
type Telegram struct {
	Received time.Time
	Fields   map[string]Value
}

func NewTelegram(received time.Time) *Telegram {
	return &Telegram{
		Received: received,
		Fields:   make(map[string]Value),
	}
}

func (t *Telegram) Value(key string) (Value, bool) {
	v, ok := t.Fields[key]
	return v, ok
}

// FloatOr returns the field as float64, or def when the field is absent
// or not numeric. Sinks and the load manager must tolerate missing keys.
func (t *Telegram) FloatOr(key string, def float64) float64 {
	v, ok := t.Fields[key]
	if !ok {
		return def
	}
	f, ok := v.AsFloat()
	if !ok {
		return def
	}
	return f
}

func (t *Telegram) StringOr(key string, def string) string {
	v, ok := t.Fields[key]
	if !ok {
		return def
	}
	return v.Text()
}

// MarshalJSON flattens the telegram to the sink contract: one flat
// key/value map with the local receive time as local_timestamp.
func (t *Telegram) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(t.Fields)+1)
	flat["local_timestamp"] = t.Received.Format(time.RFC3339)
	for k, v := range t.Fields {
		flat[k] = v
	}
	return json.Marshal(flat)
}

func (t *Telegram) ToJsonBytes() []byte {
	data, err := json.Marshal(t)
	if err != nil {
		return nil
	}
	return data
}
