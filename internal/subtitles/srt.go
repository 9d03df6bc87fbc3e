// Package subtitles composes SRT cue sheets for produced audio. Cue timing
// is approximate: sentences are distributed evenly across the audio
// duration rather than aligned to speech.
package subtitles

import (
	"fmt"
	"strings"
	"time"
)

// Cue is a single subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// SplitSentences breaks chapter text into trimmed, non-empty sentences.
func SplitSentences(content string) []string {
	parts := strings.Split(content, ".")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// Distribute spaces sentences evenly over the audio duration, one cue per
// sentence. Returns nil when there is nothing to cue.
func Distribute(sentences []string, total time.Duration) []Cue {
	if len(sentences) == 0 || total <= 0 {
		return nil
	}
	per := total / time.Duration(len(sentences))
	cues := make([]Cue, 0, len(sentences))
	for i, sentence := range sentences {
		cues = append(cues, Cue{
			Index: i + 1,
			Start: time.Duration(i) * per,
			End:   time.Duration(i+1) * per,
			Text:  sentence,
		})
	}
	return cues
}

// Compose renders cues as an SRT document.
func Compose(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", cue.Index, timestamp(cue.Start), timestamp(cue.End), cue.Text)
	}
	return b.String()
}

func timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	ms := (d - s*time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
