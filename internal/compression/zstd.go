// Package compression stores archived aggregates compactly.
package compression

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Codec names an encoding as recorded alongside stored data.
type Codec string

const (
	// CodecNone stores data as-is.
	CodecNone Codec = "none"
	// CodecZstd stores data as a single zstd frame.
	CodecZstd Codec = "zstd"
)

// minCompressSize is the size below which Compress leaves data uncompressed.
const minCompressSize = 256

var (
	encOnce sync.Once
	encoder *zstd.Encoder
	encErr  error

	decOnce sync.Once
	decoder *zstd.Decoder
	decErr  error
)

func getEncoder() (*zstd.Encoder, error) {
	encOnce.Do(func() {
		encoder, encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	return encoder, encErr
}

func getDecoder() (*zstd.Decoder, error) {
	decOnce.Do(func() {
		decoder, decErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return decoder, decErr
}

// Compress encodes data and reports the codec used. Small inputs, and inputs
// that do not shrink, are returned unchanged with CodecNone.
func Compress(data []byte) ([]byte, Codec, error) {
	if len(data) < minCompressSize {
		return data, CodecNone, nil
	}

	enc, err := getEncoder()
	if err != nil {
		return nil, "", fmt.Errorf("zstd encoder: %w", err)
	}
	out := enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	if len(out) >= len(data) {
		return data, CodecNone, nil
	}
	return out, CodecZstd, nil
}

// Decompress reverses Compress for the given codec.
func Decompress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone, "":
		return data, nil
	case CodecZstd:
		dec, err := getDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}
