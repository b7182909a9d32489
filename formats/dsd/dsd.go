// Package dsd provides "dynamic structured data": serialized data prefixed
// with a single byte identifying its serialization format.
package dsd

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/ghodss/yaml"
	"github.com/vmihailenco/msgpack/v5"
)

// Load loads a dsd structure from data into t.
func Load(data []byte, t interface{}) (SerializationFormat, error) {
	if len(data) < 2 {
		return 0, ErrNoMoreSpace
	}

	format := SerializationFormat(data[0])
	if _, ok := format.ValidateSerializationFormat(); !ok || format == AUTO {
		return 0, ErrUnknownFormat
	}
	return format, LoadAsFormat(data[1:], format, t)
}

// LoadAsFormat loads data in the given format into t.
func LoadAsFormat(data []byte, format SerializationFormat, t interface{}) (err error) {
	switch format {
	case RAW:
		return ErrIsRaw
	case JSON:
		err = json.Unmarshal(data, t)
	case YAML:
		err = yaml.Unmarshal(data, t)
	case CBOR:
		err = cbor.Unmarshal(data, t)
	case MsgPack:
		err = msgpack.Unmarshal(data, t)
	default:
		return ErrUnknownFormat
	}
	if err != nil {
		return fmt.Errorf("dsd: failed to unpack %s: %w", format, err)
	}
	return nil
}

// Dump stores t as a dsd structure.
func Dump(t interface{}, format SerializationFormat) ([]byte, error) {
	format, ok := format.ValidateSerializationFormat()
	if !ok {
		return nil, ErrUnknownFormat
	}

	data, err := DumpWithoutIdentifier(t, format)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(format)}, data...), nil
}

// DumpWithoutIdentifier serializes t without the format prefix.
func DumpWithoutIdentifier(t interface{}, format SerializationFormat) (data []byte, err error) {
	format, ok := format.ValidateSerializationFormat()
	if !ok {
		return nil, ErrUnknownFormat
	}

	switch format {
	case RAW:
		var ok bool
		data, ok = t.([]byte)
		if !ok {
			return nil, ErrIncompatibleFormat
		}
	case JSON:
		data, err = json.Marshal(t)
	case YAML:
		data, err = yaml.Marshal(t)
	case CBOR:
		data, err = cbor.Marshal(t)
	case MsgPack:
		data, err = msgpack.Marshal(t)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("dsd: failed to pack %s: %w", format, err)
	}
	return data, nil
}
