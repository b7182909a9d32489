package dsd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/pgzip"
)

// DumpAndCompress stores t as a dsd structure and compresses the result.
// The compression format is prepended as an additional identifier byte.
func DumpAndCompress(t interface{}, format SerializationFormat, compression CompressionFormat) ([]byte, error) {
	data, err := Dump(t, format)
	if err != nil {
		return nil, err
	}

	compression, ok := compression.ValidateCompressionFormat()
	if !ok {
		return nil, ErrUnknownFormat
	}

	buf := bytes.NewBuffer(nil)
	buf.WriteByte(byte(compression))

	switch compression {
	case GZIP:
		gzipWriter, err := pgzip.NewWriterLevel(buf, pgzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := gzipWriter.Write(data); err != nil {
			return nil, fmt.Errorf("dsd: failed to compress: %w", err)
		}
		// flush and write gzip footer
		if err := gzipWriter.Close(); err != nil {
			return nil, fmt.Errorf("dsd: failed to compress: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}

	return buf.Bytes(), nil
}

// DecompressAndLoad decompresses data and loads the contained dsd structure
// into t.
func DecompressAndLoad(data []byte, t interface{}) (SerializationFormat, error) {
	if len(data) < 2 {
		return 0, ErrNoMoreSpace
	}

	switch CompressionFormat(data[0]) {
	case GZIP:
		gzipReader, err := pgzip.NewReader(bytes.NewReader(data[1:]))
		if err != nil {
			return 0, fmt.Errorf("dsd: failed to decompress: %w", err)
		}
		defer func() {
			_ = gzipReader.Close()
		}()

		decompressed, err := io.ReadAll(gzipReader)
		if err != nil {
			return 0, fmt.Errorf("dsd: failed to decompress: %w", err)
		}
		return Load(decompressed, t)
	default:
		return 0, ErrUnknownFormat
	}
}
