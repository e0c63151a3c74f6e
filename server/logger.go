package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	jlog "github.com/luno/jettison/log"
)

// JSONLogger writes each log as a single line of JSON.
type JSONLogger struct {
	mu  sync.Mutex
	out io.Writer
}

func NewJSONLogger(out io.Writer) *JSONLogger {
	return &JSONLogger{out: out}
}

func (l *JSONLogger) Log(_ context.Context, entry jlog.Entry) string {
	line, err := json.Marshal(entry)
	if err != nil {
		// Fall back to the bare message so the log isn't lost.
		line = []byte(entry.Message)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
	return string(line)
}

func InitLogging() {
	jlog.SetLogger(NewJSONLogger(os.Stdout))
}
