package dsd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type family struct {
	Accession   string   `json:"accession" yaml:"accession" cbor:"accession" msgpack:"accession"`
	ID          string   `json:"id" yaml:"id" cbor:"id" msgpack:"id"`
	Seed        int      `json:"seed" yaml:"seed" cbor:"seed" msgpack:"seed"`
	Types       []string `json:"types" yaml:"types" cbor:"types" msgpack:"types"`
	Description *string  `json:"description,omitempty" yaml:"description,omitempty" cbor:"description,omitempty" msgpack:"description,omitempty"`
}

func testFamily() *family {
	desc := "5S ribosomal RNA"
	return &family{
		Accession:   "RF00001",
		ID:          "5S_rRNA",
		Seed:        712,
		Types:       []string{"Gene", "rRNA"},
		Description: &desc,
	}
}

func TestConversion(t *testing.T) {
	t.Parallel()

	subject := testFamily()
	for _, format := range []SerializationFormat{JSON, YAML, CBOR, MsgPack} {
		data, err := Dump(subject, format)
		require.NoError(t, err, format.String())
		assert.Equal(t, byte(format), data[0])

		loaded := &family{}
		loadedFormat, err := Load(data, loaded)
		require.NoError(t, err, format.String())
		assert.Equal(t, format, loadedFormat)
		assert.Equal(t, subject, loaded, format.String())
	}
}

func TestAutoFormat(t *testing.T) {
	t.Parallel()

	data, err := Dump(testFamily(), AUTO)
	require.NoError(t, err)
	assert.Equal(t, byte(DefaultSerializationFormat), data[0])
}

func TestRaw(t *testing.T) {
	t.Parallel()

	data, err := Dump([]byte("# STOCKHOLM 1.0"), RAW)
	require.NoError(t, err)
	_, err = Load(data, nil)
	assert.ErrorIs(t, err, ErrIsRaw)

	_, err = Dump("not bytes", RAW)
	assert.ErrorIs(t, err, ErrIncompatibleFormat)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte{byte(JSON)}, &family{})
	assert.ErrorIs(t, err, ErrNoMoreSpace)

	_, err = Load([]byte("X{}"), &family{})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Dump(testFamily(), SerializationFormat(3))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestCompression(t *testing.T) {
	t.Parallel()

	subject := testFamily()
	data, err := DumpAndCompress(subject, MsgPack, AutoCompress)
	require.NoError(t, err)
	assert.Equal(t, byte(GZIP), data[0])

	loaded := &family{}
	format, err := DecompressAndLoad(data, loaded)
	require.NoError(t, err)
	assert.Equal(t, MsgPack, format)
	assert.Equal(t, subject, loaded)

	_, err = DecompressAndLoad([]byte{byte(JSON), '{', '}'}, loaded)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseSerializationFormat(t *testing.T) {
	t.Parallel()

	for name, expected := range map[string]SerializationFormat{
		"json":             JSON,
		"YAML":             YAML,
		"yml":              YAML,
		"application/cbor": CBOR,
		"msgpack":          MsgPack,
	} {
		format, err := ParseSerializationFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, format, name)
	}

	_, err := ParseSerializationFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
