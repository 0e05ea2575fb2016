package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestIDField is the logrus field carrying the id of the HTTP request being served.
const RequestIDField = "request_id"

// Entry is a log entry kept for GET /logs.
type Entry struct {
	ID        int          `json:"id"`
	Message   string       `json:"message"`
	Time      time.Time    `json:"time"`
	Level     logrus.Level `json:"level"`
	RequestID string       `json:"request_id,omitempty"`
}

// Query selects entries from a LogBuffer. Nil bounds and zero values are open.
type Query struct {
	// AfterID and BeforeID are exclusive ID bounds.
	AfterID  *int
	BeforeID *int
	// Limit caps the result. Without AfterID the newest matching entries are kept, otherwise
	// the oldest after AfterID, so clients can page forward from the last ID they saw.
	Limit int
	// MinLevel drops entries less severe than it.
	MinLevel *logrus.Level
	// RequestID keeps only the entries logged while serving that request.
	RequestID string
}

func (q Query) matches(e *Entry) bool {
	if q.MinLevel != nil && e.Level > *q.MinLevel {
		return false
	}
	return q.RequestID == "" || e.RequestID == q.RequestID
}

// LogBuffer is a fixed-size ring of the newest log entries, installed as a logrus hook so the
// server can serve its own recent logs.
type LogBuffer struct {
	lock   sync.RWMutex
	buffer []*Entry
	total  int
}

// NewLogBuffer creates a LogBuffer holding up to capacity entries.
func NewLogBuffer(capacity int) *LogBuffer {
	return &LogBuffer{buffer: make([]*Entry, capacity)}
}

func (lb *LogBuffer) write(entry *Entry) {
	lb.lock.Lock()
	defer lb.lock.Unlock()
	entry.ID = lb.total
	lb.buffer[lb.total%len(lb.buffer)] = entry
	lb.total++
}

// Entries returns the entries matching q in ID order. Entries are never mutated after being
// written, so the returned pointers are safe to share.
func (lb *LogBuffer) Entries(q Query) []*Entry {
	lb.lock.RLock()
	defer lb.lock.RUnlock()

	// IDs in [lo, hi) are still in the ring and inside the requested bounds.
	lo, hi := max(0, lb.total-len(lb.buffer)), lb.total
	if q.AfterID != nil {
		lo = max(lo, *q.AfterID+1)
	}
	if q.BeforeID != nil {
		hi = min(hi, *q.BeforeID)
	}

	var out []*Entry
	full := func() bool { return q.Limit > 0 && len(out) >= q.Limit }
	if q.AfterID != nil {
		for id := lo; id < hi && !full(); id++ {
			if e := lb.buffer[id%len(lb.buffer)]; q.matches(e) {
				out = append(out, e)
			}
		}
		return out
	}

	for id := hi - 1; id >= lo && !full(); id-- {
		if e := lb.buffer[id%len(lb.buffer)]; q.matches(e) {
			out = append(out, e)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Len returns the total number of entries written to the buffer.
func (lb *LogBuffer) Len() int {
	lb.lock.RLock()
	defer lb.lock.RUnlock()
	return lb.total
}

// Fire implements the logrus.Hook interface.
func (lb *LogBuffer) Fire(entry *logrus.Entry) error {
	requestID, _ := entry.Data[RequestIDField].(string)
	lb.write(&Entry{
		Message:   formatMessage(entry.Message, entry.Data),
		Time:      entry.Time,
		Level:     entry.Level,
		RequestID: requestID,
	})
	return nil
}

// Levels implements the logrus.Hook interface.
func (lb *LogBuffer) Levels() []logrus.Level {
	return logrus.AllLevels
}

// formatMessage appends the fields other than the request id to the message, sorted by key.
func formatMessage(msg string, data logrus.Fields) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		if key != RequestIDField {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return msg
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, fmt.Sprintf("%s=%q", key, fmt.Sprint(data[key])))
	}
	return msg + "  " + strings.Join(fields, " ")
}
