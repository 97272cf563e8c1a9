package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var idCounter uint64

// GenerateID generates a unique ID from a timestamp and an atomic counter
func GenerateID() string {
	count := atomic.AddUint64(&idCounter, 1)
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%x-%x", timestamp, count)
}

// GenerateRunID generates a run identifier with a random suffix
func GenerateRunID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Counter-based ID is still unique within the process
		return "run-" + GenerateID()
	}
	return fmt.Sprintf("run-%d-%s", time.Now().Unix(), hex.EncodeToString(buf))
}
