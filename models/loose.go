package models

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// LooseString decodes text fields that older writers stored with other BSON
// types. Numbers are kept in decimal form; any other non-string value reads
// as empty.
type LooseString string

func (s *LooseString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		v, ok := raw.StringValueOK()
		if !ok {
			return fmt.Errorf("malformed string value")
		}
		*s = LooseString(v)
	case bsontype.Int32:
		*s = LooseString(strconv.FormatInt(int64(raw.Int32()), 10))
	case bsontype.Int64:
		*s = LooseString(strconv.FormatInt(raw.Int64(), 10))
	case bsontype.Double:
		*s = LooseString(strconv.FormatFloat(raw.Double(), 'f', -1, 64))
	default:
		*s = ""
	}
	return nil
}

// LooseNumber decodes numeric fields that older writers stored as any BSON
// number or as numeric text. Anything else reads as zero.
type LooseNumber float64

func (n *LooseNumber) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		*n = LooseNumber(raw.Double())
	case bsontype.Int32:
		*n = LooseNumber(raw.Int32())
	case bsontype.Int64:
		*n = LooseNumber(raw.Int64())
	case bsontype.Decimal128:
		f, err := strconv.ParseFloat(raw.Decimal128().String(), 64)
		if err != nil {
			f = 0
		}
		*n = LooseNumber(f)
	case bsontype.String:
		v, ok := raw.StringValueOK()
		if !ok {
			return fmt.Errorf("malformed string value")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			f = 0
		}
		*n = LooseNumber(f)
	default:
		*n = 0
	}
	return nil
}
