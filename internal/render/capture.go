package render

import (
	"bytes"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// maxLinePending bounds how much of an unterminated line is held back
// before it is logged anyway.
const maxLinePending = 4 << 10

// lineCapture is an io.Writer for a subprocess stream. It logs each complete
// line at debug level as it arrives and, when limit > 0, keeps up to limit
// bytes for later retrieval.
type lineCapture struct {
	mu        sync.Mutex
	logger    *log.Logger
	stream    string
	limit     int
	buf       bytes.Buffer
	pending   []byte
	truncated bool
}

func newLineCapture(logger *log.Logger, stream string, limit int) *lineCapture {
	return &lineCapture{logger: logger, stream: stream, limit: limit}
}

func (c *lineCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limit > 0 {
		room := c.limit - c.buf.Len()
		switch {
		case room >= len(p):
			c.buf.Write(p)
		case room > 0:
			c.buf.Write(p[:room])
			c.truncated = true
		default:
			c.truncated = true
		}
	}

	c.pending = append(c.pending, p...)
	for {
		i := bytes.IndexByte(c.pending, '\n')
		if i < 0 {
			break
		}
		c.emit(c.pending[:i])
		c.pending = c.pending[i+1:]
	}
	if len(c.pending) > maxLinePending {
		c.emit(c.pending)
		c.pending = nil
	}

	return len(p), nil
}

func (c *lineCapture) emit(line []byte) {
	text := strings.TrimRight(string(line), "\r")
	if strings.TrimSpace(text) == "" {
		return
	}
	c.logger.Debug("renderer output", "stream", c.stream, "line", text)
}

// String returns the captured bytes, trimmed, with a marker if the limit
// was reached.
func (c *lineCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) > 0 {
		c.emit(c.pending)
		c.pending = nil
	}

	out := strings.TrimSpace(c.buf.String())
	if c.truncated {
		out += "\n[output truncated]"
	}
	return out
}

// summarize picks the line of diagnostics most likely to explain a failure:
// the first line mentioning an error, or else the first non-empty line.
func summarize(diagnostics string) string {
	var first string
	for _, line := range strings.Split(diagnostics, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if strings.Contains(strings.ToLower(line), "error") {
			return clip(line, 300)
		}
	}
	return clip(first, 300)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
