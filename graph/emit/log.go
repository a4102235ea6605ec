package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
)

// LogEmitter writes events to an io.Writer as human-readable lines or
// JSONL. Writes are serialized with a mutex so interleaved engine
// goroutines produce whole lines.
type LogEmitter struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
}

// NewLogEmitter creates a text-format emitter writing to w.
func NewLogEmitter(w io.Writer) *LogEmitter {
	return &LogEmitter{w: w}
}

// NewJSONLEmitter creates an emitter writing one JSON object per line.
func NewJSONLEmitter(w io.Writer) *LogEmitter {
	return &LogEmitter{w: w, json: true}
}

// Emit writes the event. Write errors are swallowed; observability
// must not fail the run.
func (l *LogEmitter) Emit(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.json {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		fmt.Fprintf(l.w, "%s\n", data)
		return
	}

	line := fmt.Sprintf("[%s] step=%d", e.RunID, e.Step)
	if e.NodeID != "" {
		line += fmt.Sprintf(" node=%s", e.NodeID)
	}
	line += fmt.Sprintf(" msg=%q", e.Msg)
	for _, k := range sortedKeys(e.Meta) {
		line += fmt.Sprintf(" %s=%v", k, e.Meta[k])
	}
	fmt.Fprintln(l.w, line)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
