package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the block compression algorithm used for table blocks.
type Compression uint8

const (
	// CompressionNone stores blocks uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast with a modest ratio, good for hot data.
	CompressionLZ4 Compression = 1
	// CompressionZSTD has a better ratio, good for archived surveys.
	CompressionZSTD Compression = 2
)

// String returns the stable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressBlock frames and compresses a block.
// Format: [UncompressedSize uint32][CompressedSize uint32][Data...].
// If CompressedSize == 0, the block is stored uncompressed.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	raw := func() []byte {
		out := make([]byte, 8+len(data))
		binary.LittleEndian.PutUint32(out[0:4], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:8], 0)
		copy(out[8:], data)
		return out
	}

	switch c {
	case CompressionNone:
		return raw(), nil

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		out := make([]byte, 8+bound)
		n, err := lz4.CompressBlock(data, out[8:], nil)
		if err != nil {
			return nil, err
		}
		if n == 0 || n >= len(data) {
			// Incompressible, store raw.
			return raw(), nil
		}
		binary.LittleEndian.PutUint32(out[0:4], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:8], uint32(n))
		return out[:8+n], nil

	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)

		compressed := enc.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return raw(), nil
		}
		out := make([]byte, 8+len(compressed))
		binary.LittleEndian.PutUint32(out[0:4], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:8], uint32(len(compressed)))
		copy(out[8:], compressed)
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// decompressBlock reverses compressBlock.
func decompressBlock(block []byte, c Compression) ([]byte, error) {
	if len(block) < 8 {
		return nil, fmt.Errorf("%w: block too short", ErrCorruptFile)
	}

	uncompressedSize := binary.LittleEndian.Uint32(block[0:4])
	compressedSize := binary.LittleEndian.Uint32(block[4:8])
	payload := block[8:]

	if compressedSize == 0 {
		if uint32(len(payload)) != uncompressedSize {
			return nil, fmt.Errorf("%w: raw block size mismatch", ErrCorruptFile)
		}
		out := make([]byte, uncompressedSize)
		copy(out, payload)
		return out, nil
	}

	if uint32(len(payload)) != compressedSize {
		return nil, fmt.Errorf("%w: compressed block size mismatch", ErrCorruptFile)
	}

	switch c {
	case CompressionLZ4:
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		return out[:n], nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		return dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}
