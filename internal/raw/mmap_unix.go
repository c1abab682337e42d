//go:build unix

package raw

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps size bytes of f read-only. The mapping outlives f.
func mapFile(f *os.File, path string, size int) (*Mapping, error) {
	if err := reserve(); err != nil {
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		mapCount.Add(-1)
		return nil, err
	}
	// Payloads are usually read front to back when stacking.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
	return &Mapping{path: path, data: data, refs: 1}, nil
}

func munmap(data []byte) error {
	return unix.Munmap(data)
}
