package model

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// timeNow is a seam so the fallback tier can be exercised at a fixed instant.
var timeNow = time.Now

// Id prefixes distinguish entity kinds in logs and exported payloads.
const (
	ChatIDPrefix    = "chat"
	MessageIDPrefix = "msg"
)

// NewID returns a prefixed opaque id. The preferred tier is a random UUID
// backed by crypto/rand. If the entropy source fails, it falls back to a
// pseudo-random id that mixes a random component with the current time, so
// rapid calls within the same tick still diverge. The fallback's collision
// behavior is pinned by a test rather than left incidental.
func NewID(prefix string) string {
	if id, err := uuid.NewRandom(); err == nil {
		return prefix + "_" + id.String()
	}
	return prefix + "_" + fallbackID()
}

func fallbackID() string {
	return fmt.Sprintf("%s%s",
		strconv.FormatUint(rand.Uint64(), 36),
		strconv.FormatInt(timeNow().UnixNano(), 36),
	)
}
