package persist

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4JSONExtension is the file extension for LZ4-compressed JSON files.
const lz4JSONExtension = ".json.lz4"

// LZ4JSONCodec implements Codec using compact JSON wrapped in an LZ4 frame.
// Suitable for large cached state where disk footprint matters.
type LZ4JSONCodec struct{}

// NewLZ4JSONCodec creates an LZ4-compressed JSON codec.
func NewLZ4JSONCodec() *LZ4JSONCodec {
	return &LZ4JSONCodec{}
}

// Encode implements Codec.Encode using JSON encoding inside an LZ4 writer.
func (c *LZ4JSONCodec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	err := json.NewEncoder(zw).Encode(state)
	if err != nil {
		return fmt.Errorf("lz4 json encode: %w", err)
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 flush: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding from an LZ4 reader.
func (c *LZ4JSONCodec) Decode(r io.Reader, state any) error {
	zr := lz4.NewReader(r)

	err := json.NewDecoder(zr).Decode(state)
	if err != nil {
		return fmt.Errorf("lz4 json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for LZ4-compressed JSON files.
func (c *LZ4JSONCodec) Extension() string {
	return lz4JSONExtension
}
