package console

import (
	"fmt"
	"strings"
	"sync"
)

// CmdFunc handles one console command invocation.
type CmdFunc func(args []string)

// CmdRegistry maps command names to callbacks. The client registers exactly
// one dynamic command ("reconnect") per connection and removes it on
// teardown; everything else is static.
type CmdRegistry struct {
	mu   sync.Mutex
	cmds map[string]CmdFunc
}

func NewCmdRegistry() *CmdRegistry {
	return &CmdRegistry{cmds: make(map[string]CmdFunc)}
}

func (r *CmdRegistry) Register(name string, fn CmdFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cmds[name]; ok {
		return fmt.Errorf("console: command %q already registered", name)
	}
	r.cmds[name] = fn
	return nil
}

// Replace installs fn whether or not the name is taken.
func (r *CmdRegistry) Replace(name string, fn CmdFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds[name] = fn
}

func (r *CmdRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cmds, name)
}

// Exec parses one command line and invokes its handler. Unknown commands are
// reported, not fatal: servers stuff arbitrary text at clients.
func (r *CmdRegistry) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	r.mu.Lock()
	fn, ok := r.cmds[fields[0]]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("console: unknown command %q", fields[0])
	}
	fn(fields[1:])
	return nil
}
