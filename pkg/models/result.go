package models

import "time"

// ScanStatus is the final state of a scan session
type ScanStatus string

const (
	StatusRunning   ScanStatus = "running"
	StatusCompleted ScanStatus = "completed"
	StatusCancelled ScanStatus = "cancelled"
	StatusFailed    ScanStatus = "failed"
)

// ScanResults contains the complete results of one scan session
type ScanResults struct {
	// Summary
	SessionID string        `json:"session_id"`
	Roots     []string      `json:"roots"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Status    ScanStatus    `json:"status"`
	Version   string        `json:"version"`

	// Traversal
	ProcessedDirs  uint64                `json:"processed_dirs"`
	ProcessedFiles uint64                `json:"processed_files"`
	TotalBytes     uint64                `json:"total_bytes"`
	MediaCounts    map[MediaClass]uint64 `json:"media_counts"`
	Warnings       uint64                `json:"warnings"`

	// Hashing
	QuickHashed  uint64 `json:"quick_hashed"`
	FullHashed   uint64 `json:"full_hashed"`
	HashFailures uint64 `json:"hash_failures"`

	// Duplicates
	Groups          []DuplicateGroup `json:"groups"`
	DuplicateFiles  uint64           `json:"duplicate_files"`
	WastedSpace     uint64           `json:"wasted_space"`
	IntegrityErrors []string         `json:"integrity_errors,omitempty"`

	// Statistics
	Stats *ScanStatistics `json:"statistics"`

	// Report path
	ReportPath string `json:"report_path,omitempty"`
}

// ScanStatistics contains performance details of a scan
type ScanStatistics struct {
	FullAlgorithm  string  `json:"full_algorithm"`
	QuickAlgorithm string  `json:"quick_algorithm,omitempty"`
	QuickPass      bool    `json:"quick_pass"`
	BytesHashed    uint64  `json:"bytes_hashed"`
	FilesPerSecond float64 `json:"files_per_second"`
	MemoryUsed     uint64  `json:"memory_used_bytes"`
	WorkersUsed    int     `json:"workers_used"`
}

// NewScanResults returns empty results for a new session
func NewScanResults(sessionID string, roots []string) *ScanResults {
	return &ScanResults{
		SessionID:   sessionID,
		Roots:       roots,
		Status:      StatusRunning,
		MediaCounts: make(map[MediaClass]uint64),
		Stats:       &ScanStatistics{},
	}
}

// AddFile records a walked file in the traversal totals
func (r *ScanResults) AddFile(f *FileDescriptor) {
	r.ProcessedFiles++
	r.TotalBytes += f.Size
	if r.MediaCounts == nil {
		r.MediaCounts = make(map[MediaClass]uint64)
	}
	r.MediaCounts[f.Media]++
}

// SetGroups stores the duplicate groups and derives the totals
func (r *ScanResults) SetGroups(groups []DuplicateGroup) {
	r.Groups = groups
	r.DuplicateFiles = 0
	r.WastedSpace = 0
	for i := range groups {
		r.DuplicateFiles += uint64(groups[i].Count())
		r.WastedSpace += groups[i].WastedSpace
	}
}
