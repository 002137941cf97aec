package task

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// EffectIDs issues stable-format effect identifiers for one run. IDs embed
// the task name so the tasks/ tree stays readable, plus a short digest so
// repeated calls to the same task never collide.
type EffectIDs struct {
	runID string
	salt  string
	seq   atomic.Int64
}

// NewEffectIDs seeds an issuer for the given run.
func NewEffectIDs(runID string) *EffectIDs {
	return &EffectIDs{runID: runID, salt: uuid.NewString()}
}

// Next returns the effect ID for the next invocation of the named task.
func (e *EffectIDs) Next(taskName string) string {
	seq := e.seq.Add(1)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", e.runID, e.salt, taskName, seq)))
	slug := sanitizeSlug(taskName)
	return fmt.Sprintf("%s-%03d-%x", slug, seq, sum[:4])
}

func sanitizeSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "task"
	}
	return out
}
