package config

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"

	"kcpu/hw"
)

// LoadImage reads a .kb file (spec.md §6: little-endian packed 16-bit
// words, word 0 at address 0) into a Word slice. An empty path loads an
// empty image, so a caller can run with a BIOS-only or prog-only machine.
func LoadImage(path string) ([]hw.Word, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading image %s", path)
	}
	if len(raw)%2 != 0 {
		return nil, errors.Errorf("config: image %s has odd byte count %d (parity error)", path, len(raw))
	}
	words := make([]hw.Word, len(raw)/2)
	for i := range words {
		words[i] = hw.Word(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return words, nil
}
