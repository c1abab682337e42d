package raw

import (
	"sync"
	"sync/atomic"

	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

// MaxMapCount caps the number of live mappings in the process, leaving
// headroom below the usual Linux vm.max_map_count of 65530.
var MaxMapCount int64 = 60000

var mapCount atomic.Int64

// LiveMappings returns the number of mappings not yet released.
func LiveMappings() int64 {
	return mapCount.Load()
}

// Mapping is a read-only memory mapping shared by the arrays viewing it.
type Mapping struct {
	path string
	data []byte

	mu   sync.Mutex
	refs int
}

// Path returns the mapped file's path.
func (m *Mapping) Path() string { return m.path }

func (m *Mapping) acquire() {
	m.mu.Lock()
	m.refs++
	m.mu.Unlock()
}

func (m *Mapping) release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs--
	if m.refs > 0 || m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	err := munmap(data)
	mapCount.Add(-1)
	if err != nil {
		return mdserr.IO(m.path, err)
	}
	return nil
}

// reserve takes a slot in the process-wide map count.
func reserve() error {
	if n := mapCount.Add(1); n > MaxMapCount {
		mapCount.Add(-1)
		return mdserr.ErrMaxMapCount
	}
	return nil
}
