package common

import "sync/atomic"

// completionRank is a process-wide, strictly monotonic counter. It is
// grabbed atomically the instant an attempt's outcome is known, and is used
// to break ties between attempts whose FinishedAt timestamps land in the
// same millisecond. See the race resolution rule: attempts are ordered by
// (FinishedAt, CompletionRank).
var completionRank atomic.Int64

// NextCompletionRank returns the next value in the process-wide completion
// sequence. Every attempt across every in-flight hedged call shares this
// counter, so ranks are comparable across requests as well as within one.
func NextCompletionRank() int64 {
	return completionRank.Add(1)
}
