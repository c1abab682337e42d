//go:build !unix

package raw

import "os"

// mapFile reports no mapping; callers fall back to an owned read.
func mapFile(f *os.File, path string, size int) (*Mapping, error) {
	return nil, nil
}

func munmap(data []byte) error {
	return nil
}
