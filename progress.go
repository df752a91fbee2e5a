package siteaudit

// ProgressType identifies a stage of a site audit.
type ProgressType int

// Progress event types.
const (
	ProgressCrawled   ProgressType = iota // crawl finished; Total is set
	ProgressStarted                       // page audit dispatched
	ProgressRetrying                      // first attempt failed, backing off
	ProgressCompleted                     // page audited successfully
	ProgressFailed                        // page recorded as an AuditError
	ProgressFinished                      // report assembled
)

func (t ProgressType) String() string {
	switch t {
	case ProgressCrawled:
		return "crawled"
	case ProgressStarted:
		return "started"
	case ProgressRetrying:
		return "retrying"
	case ProgressCompleted:
		return "completed"
	case ProgressFailed:
		return "failed"
	case ProgressFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ProgressEvent reports progress during a site audit.
type ProgressEvent struct {
	Type      ProgressType
	URL       string
	Completed int // pages finished, audited or failed
	Total     int // pages discovered
	Scores    *Scores
	Error     string
}

// ProgressFunc is called to report progress. Calls are serialized.
type ProgressFunc func(event ProgressEvent)
