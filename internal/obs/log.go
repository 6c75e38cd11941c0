package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

// The API emits one JSON object per line on stdout. Keeping the logger free
// of prefixes and flags leaves the line format entirely to the entry map.
var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide request logger. Tests may redirect it with
// SetOutput before exercising handlers.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest serializes entry as a single JSON log line. Entries carry the
// per-request fields set by the middleware chain (method, path, status,
// duration, request_id).
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"request log entry not serializable"}`)
		return
	}
	Logger().Println(string(data))
}
