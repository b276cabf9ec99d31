package domain

import "time"

// DescribeMode selects the register of generated file descriptions.
type DescribeMode string

const (
	// DescribeConcise produces a 1-3 sentence summary. Default.
	DescribeConcise DescribeMode = "concise"
	// DescribeDetailed produces a thorough 3-6 sentence summary.
	DescribeDetailed DescribeMode = "detailed"
	// DescribeCreative produces a catchy 1-3 sentence summary.
	DescribeCreative DescribeMode = "creative"
)

// ParseDescribeMode normalises a user-supplied mode string, defaulting
// to concise for unknown values.
func ParseDescribeMode(s string) DescribeMode {
	switch DescribeMode(s) {
	case DescribeDetailed:
		return DescribeDetailed
	case DescribeCreative:
		return DescribeCreative
	default:
		return DescribeConcise
	}
}

// ScanOptions configures a directory ingestion run.
type ScanOptions struct {
	// Root is the directory to walk. Must be a readable directory.
	Root string

	// Contractor and Project tag every document written by this scan.
	Contractor string
	Project    string

	// Mode selects the description register.
	Mode DescribeMode

	// Cutoff, when set, skips files whose modification time predates it.
	Cutoff *time.Time
}

// ScanResult reports aggregate counts for one ingestion run.
type ScanResult struct {
	Processed   int `json:"processed"`
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	ChunksAdded int `json:"chunks_added"`
}

// ImportResult reports aggregate counts for a bulk import.
type ImportResult struct {
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	ChunksWritten  int `json:"chunks_written"`
	ChunksEmbedded int `json:"chunks_embedded"`
}
