package fill

import (
	"os"
	"sync"

	"github.com/spf13/afero"

	"fillfs/internal/logging"
)

// Guard owns the lifetime of the sentinel file. The top-level flow
// creates one guard per run, registers the sentinel path once it is
// known, and calls Remove from every exit path: the deferred cleanup,
// the error return, and the signal handler. Preserving jobs never
// register anything, so a user file can never be removed through the
// guard.
type Guard struct {
	fs     afero.Fs
	logger *logging.Logger

	mu   sync.Mutex
	path string
}

func NewGuard(fsys afero.Fs, logger *logging.Logger) *Guard {
	return &Guard{fs: fsys, logger: logger}
}

// Register records the sentinel path. The first registration wins;
// later calls are ignored.
func (g *Guard) Register(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.path == "" {
		g.path = path
	}
}

// Remove unlinks the registered sentinel. Idempotent: calling it any
// number of times, from any goroutine, with the file already gone or
// nothing registered, is fine.
func (g *Guard) Remove() {
	g.mu.Lock()
	path := g.path
	g.mu.Unlock()

	if path == "" {
		return
	}

	if err := g.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		if g.logger != nil {
			g.logger.Log("WARN", "Error removing sentinel file", "file", path, "error", err.Error())
		}
	}
}
