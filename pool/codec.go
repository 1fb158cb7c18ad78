package pool

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	codecOnce sync.Once
	codecErr  error
	decoder   *zstd.Decoder
	encoder   *zstd.Encoder
)

// initCodec builds the shared encoder and decoder. EncodeAll and DecodeAll are safe for concurrent use.
func initCodec() error {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return codecErr
}

func compress(payload []byte) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("unable to build zstd encoder - %w", err)
	}
	return encoder.EncodeAll(payload, make([]byte, 0, len(payload)/2)), nil
}

func decompress(payload []byte) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("unable to build zstd decoder - %w", err)
	}
	decoded, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress payload - %w", err)
	}
	return decoded, nil
}
