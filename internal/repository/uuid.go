package repository

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// UUIDs are stored as BSON binary subtype 4, the standard UUID representation,
// so ids round-trip losslessly between uuid.UUID fields and the documents.

var uuidType = reflect.TypeOf(uuid.UUID{})

const uuidSubtype = byte(0x04)

func newRegistry() *bsoncodec.Registry {
	registry := bson.NewRegistry()

	registry.RegisterTypeEncoder(uuidType, bsoncodec.ValueEncoderFunc(encodeUUID))
	registry.RegisterTypeDecoder(uuidType, bsoncodec.ValueDecoderFunc(decodeUUID))

	return registry
}

func encodeUUID(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != uuidType {
		return bsoncodec.ValueEncoderError{
			Name:     "encodeUUID",
			Types:    []reflect.Type{uuidType},
			Received: val,
		}
	}

	id := val.Interface().(uuid.UUID)

	return vw.WriteBinaryWithSubtype(id[:], uuidSubtype)
}

func decodeUUID(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != uuidType {
		return bsoncodec.ValueDecoderError{
			Name:     "decodeUUID",
			Types:    []reflect.Type{uuidType},
			Received: val,
		}
	}

	switch vr.Type() {
	case bson.TypeBinary:
		data, subtype, err := vr.ReadBinary()
		if err != nil {
			return err
		}
		if subtype != uuidSubtype {
			return fmt.Errorf("cannot decode binary subtype %d as a UUID", subtype)
		}

		id, err := uuid.FromBytes(data)
		if err != nil {
			return err
		}

		val.Set(reflect.ValueOf(id))

		return nil
	case bson.TypeNull:
		if err := vr.ReadNull(); err != nil {
			return err
		}

		val.Set(reflect.Zero(uuidType))

		return nil
	default:
		return fmt.Errorf("cannot decode %v as a UUID", vr.Type())
	}
}
