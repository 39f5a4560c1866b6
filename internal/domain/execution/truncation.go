package execution

import (
	"fmt"
	"strings"
)

// DefaultMaxOutputSize is the default limit for captured task output (64KB).
const DefaultMaxOutputSize = 64 * 1024

// OutputMeta contains metadata about output truncation.
type OutputMeta struct {
	Truncated    bool   `json:"truncated" yaml:"truncated"`
	OriginalSize int    `json:"original_size_bytes" yaml:"original_size_bytes"`
	TruncatedAt  int    `json:"truncated_at_bytes" yaml:"truncated_at_bytes"`
	Reason       string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// TruncationStrategy defines how captured output is shortened when it
// exceeds a limit.
type TruncationStrategy interface {
	Truncate(output string, limit int) (string, *OutputMeta)
}

// HeadTailTruncator keeps the beginning and the end of the output, where
// commands usually print what they are doing and how it ended.
type HeadTailTruncator struct{}

const truncationMarker = "\n... [TRUNCATED] ...\n"

// Truncate returns output unchanged when it fits, otherwise its head and
// tail around a marker. A limit of zero or less disables truncation.
func (t *HeadTailTruncator) Truncate(output string, limit int) (string, *OutputMeta) {
	if limit <= 0 || len(output) <= limit {
		return output, nil
	}

	keep := limit - len(truncationMarker)
	if keep < 2 {
		keep = 2
	}
	head := keep / 2
	tail := keep - head

	var b strings.Builder
	b.Grow(keep + len(truncationMarker))
	b.WriteString(output[:head])
	b.WriteString(truncationMarker)
	b.WriteString(output[len(output)-tail:])

	return b.String(), &OutputMeta{
		Truncated:    true,
		OriginalSize: len(output),
		TruncatedAt:  limit,
		Reason:       fmt.Sprintf("output exceeded %d bytes limit (head/tail strategy)", limit),
	}
}
