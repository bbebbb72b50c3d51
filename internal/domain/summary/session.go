package summary

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ai-article-summarizer/pkg/util"
)

// streamSession tracks one streaming request from acquisition to its single
// terminal transition.
type streamSession struct {
	id           string
	source       ContentSource
	targetLength TargetLength
	startedAt    time.Time

	accumulator strings.Builder
	terminal    atomic.Bool
}

func newStreamSession(source ContentSource, length TargetLength) *streamSession {
	return &streamSession{
		id:           uuid.NewString(),
		source:       source,
		targetLength: length,
		startedAt:    util.NowUTC(),
	}
}

func (s *streamSession) append(fragment string) {
	s.accumulator.WriteString(fragment)
}

func (s *streamSession) fullText() string {
	return s.accumulator.String()
}

// tryTerminate is the single-winner terminal transition: only the first
// caller gets true, so done, upstream error, timeout, and disconnect cannot
// race into two terminal events.
func (s *streamSession) tryTerminate() bool {
	return s.terminal.CompareAndSwap(false, true)
}

func (s *streamSession) elapsed() time.Duration {
	return time.Since(s.startedAt)
}
