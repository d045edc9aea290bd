package console

import (
	"log"
	"strings"
	"sync"
)

// Console collects server print output and buffers stuffed command text until
// the frame loop drains it through the command registry.
type Console struct {
	mu      sync.Mutex
	logger  *log.Logger
	pending strings.Builder
}

func New(logger *log.Logger) *Console {
	if logger == nil {
		logger = log.Default()
	}
	return &Console{logger: logger}
}

// Print shows server text (svc_print) to the user.
func (c *Console) Print(text string) {
	c.logger.Print(strings.TrimRight(text, "\n"))
}

// CenterPrint shows centered text. Without a HUD it goes to the same sink.
func (c *Console) CenterPrint(text string) {
	c.logger.Printf("|| %s", strings.TrimRight(text, "\n"))
}

// StuffText appends server-supplied command text. Lines may arrive split
// across messages; only newline-terminated lines are executable.
func (c *Console) StuffText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.WriteString(text)
}

// Drain executes every complete buffered line against the registry. A
// trailing partial line is kept for the next message.
func (c *Console) Drain(cmds *CmdRegistry) {
	c.mu.Lock()
	buf := c.pending.String()
	c.pending.Reset()
	idx := strings.LastIndexByte(buf, '\n')
	if idx < 0 {
		c.pending.WriteString(buf)
		c.mu.Unlock()
		return
	}
	c.pending.WriteString(buf[idx+1:])
	c.mu.Unlock()

	for _, line := range strings.Split(buf[:idx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := cmds.Exec(line); err != nil {
			c.logger.Printf("stuffed command: %v", err)
		}
	}
}
