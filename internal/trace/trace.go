// Package trace decodes flat little-endian float64 sample files.
package trace

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// SampleSize is the width in bytes of one encoded sample.
const SampleSize = 8

// FormatError reports a trace whose byte length is not a whole number of samples.
type FormatError struct {
	Size int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("trace length not multiple of %d bytes: %d", SampleSize, e.Size)
}

// LengthMismatchError reports a decoded sample count that differs from the
// count the manifest declares.
type LengthMismatchError struct {
	Expected int
	Got      int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("trace length mismatch: expected %d, got %d", e.Expected, e.Got)
}

// Decode converts data into samples, index 0 being the first 8 bytes.
// A negative expected skips the length check. NaN, infinities and subnormals
// decode as their IEEE-754 values.
func Decode(data []byte, expected int) ([]float64, error) {
	if len(data)%SampleSize != 0 {
		return nil, &FormatError{Size: len(data)}
	}
	n := len(data) / SampleSize
	if expected >= 0 && n != expected {
		return nil, &LengthMismatchError{Expected: expected, Got: n}
	}
	samples := make([]float64, n)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*SampleSize:])
		samples[i] = math.Float64frombits(bits)
	}
	return samples, nil
}

// Encode is the inverse of Decode.
func Encode(samples []float64) []byte {
	out := make([]byte, len(samples)*SampleSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint64(out[i*SampleSize:], math.Float64bits(s))
	}
	return out
}

// ReadFile reads and decodes the trace at path without a length check.
func ReadFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return Decode(data, -1)
}
