package utils

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var idCounter uint64

// GenerateRequestID generates a unique ID for correlating a single HTTP
// request across log lines.
func GenerateRequestID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		// Fallback to timestamp+counter when the entropy source fails
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("%x-%x", time.Now().UnixNano(), count)
	}
	return id.String()
}
