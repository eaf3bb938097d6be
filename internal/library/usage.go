package library

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ayusman/stroked/internal/tracker"
)

// MaxUsageEntries caps the usage log. Once full, the oldest entries are
// dropped first: the log records recency of use, not of access.
const MaxUsageEntries = 100

// UsageEntry records one successfully dispatched gesture.
type UsageEntry struct {
	Timestamp    int64           `json:"timestamp"`
	GestureLabel string          `json:"gesture_label"`
	Tokens       string          `json:"tokens"`
	DirMode      tracker.DirMode `json:"dir_mode"`
	BindingIdx   int             `json:"binding_idx"`
}

// LoadUsage reads the usage log. A missing, empty or unparsable file yields
// an empty log; a corrupted log is not worth failing a gesture over.
func LoadUsage(path string) []UsageEntry {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if strings.TrimSpace(string(content)) == "" {
		return nil
	}

	var usage []UsageEntry
	if err := json.Unmarshal(content, &usage); err != nil {
		return nil
	}
	return usage
}

// RecordUsage appends an entry to the usage log and rewrites the file
// wholesale, evicting the oldest entries beyond MaxUsageEntries.
func RecordUsage(path string, entry UsageEntry) error {
	usage := append(LoadUsage(path), entry)
	if len(usage) > MaxUsageEntries {
		usage = usage[len(usage)-MaxUsageEntries:]
	}

	data, err := json.MarshalIndent(usage, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize usage log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write usage log: %w", err)
	}
	return nil
}
