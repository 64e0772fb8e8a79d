package models

// Stage identifies the pipeline phase that raised an event
type Stage string

const (
	StageWalk  Stage = "walk"
	StageQuick Stage = "quick"
	StageFull  Stage = "full"
	StageGroup Stage = "group"
)

// ErrorKind classifies per-item and fatal failures
type ErrorKind string

const (
	KindInvalidRoot        ErrorKind = "invalid_root"
	KindAccessDenied       ErrorKind = "access_denied"
	KindIOFailure          ErrorKind = "io_failure"
	KindIntegrityViolation ErrorKind = "integrity_violation"
)

// Event is a progress notification. The concrete types are
// ProgressEvent, WarningEvent and CompleteEvent; consumers switch on the type.
type Event interface {
	EventStage() Stage
	event()
}

// ProgressEvent is a periodic liveness report
type ProgressEvent struct {
	Stage          Stage  `json:"stage"`
	ProcessedDirs  uint64 `json:"processed_dirs"`
	ProcessedFiles uint64 `json:"processed_files"`
	CurrentPath    string `json:"current_path"`
	QueueDepth     int    `json:"queue_depth"`
}

// WarningEvent reports a recovered per-item failure
type WarningEvent struct {
	Stage   Stage     `json:"stage"`
	Path    string    `json:"path"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}

// CompleteEvent is the terminal event of a stage
type CompleteEvent struct {
	Stage          Stage  `json:"stage"`
	ProcessedDirs  uint64 `json:"processed_dirs"`
	ProcessedFiles uint64 `json:"processed_files"`
	TotalBytes     uint64 `json:"total_bytes"`
	Cancelled      bool   `json:"cancelled,omitempty"`
}

func (e ProgressEvent) EventStage() Stage { return e.Stage }
func (e WarningEvent) EventStage() Stage  { return e.Stage }
func (e CompleteEvent) EventStage() Stage { return e.Stage }

func (ProgressEvent) event() {}
func (WarningEvent) event()  {}
func (CompleteEvent) event() {}
