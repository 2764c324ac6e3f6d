package model

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Layouts accepted for timestamps without a UTC offset. Such values are
// read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// Timestamp is an instant encoded as RFC 3339 in JSON and as a BSON
// datetime in the store. Decoding also accepts ISO 8601 values with no
// offset, which are taken to be UTC.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses an RFC 3339 timestamp, or a naive ISO 8601 one as UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{t.UTC()}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q: want RFC 3339", s)
}

// MarshalJSON encodes the zero Timestamp as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp: want an RFC 3339 string")
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalBSONValue stores the zero Timestamp as null.
func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if t.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(t.Time.UTC())
}

// UnmarshalBSONValue reads a BSON datetime or a timestamp string. Null
// yields the zero Timestamp.
func (t *Timestamp) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: typ, Value: data}
	switch typ {
	case bsontype.Null, bsontype.Undefined:
		*t = Timestamp{}
		return nil
	case bsontype.DateTime:
		*t = Timestamp{rv.Time().UTC()}
		return nil
	case bsontype.String:
		parsed, err := ParseTimestamp(rv.StringValue())
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot decode BSON %s into a timestamp", typ)
	}
}
