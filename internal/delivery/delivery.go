// Package delivery provides local stand-ins for the delivery channel. Each sink
// receives the final list for one user after matching.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/output"
)

// DateLayout names daily delivery files
const DateLayout = "2006-01-02"

// Sink receives the final list for one user
type Sink interface {
	Deliver(ctx context.Context, username string, jobs []job.Posting) error
}

// Multi fans a list out to several sinks in order and stops at the first error
type Multi []Sink

// Deliver calls every sink in order
func (m Multi) Deliver(ctx context.Context, username string, jobs []job.Posting) error {
	for _, s := range m {
		if err := s.Deliver(ctx, username, jobs); err != nil {
			return err
		}
	}
	return nil
}

// Batch is the document written for one user and day
type Batch struct {
	Username    string        `json:"username"`
	GeneratedAt time.Time     `json:"generated_at"`
	Jobs        []job.Posting `json:"jobs"`
}

// DirSink writes each user's list to <Dir>/<username>-<YYYY-MM-DD>.json.
// A second delivery on the same day is merged into the existing file.
type DirSink struct {
	Dir string
	Now func() time.Time // defaults to time.Now
}

// NewDirSink creates a DirSink rooted at dir
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Path returns the file a delivery for username would be written to
func (s *DirSink) Path(username string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s-%s.json", safeName(username), s.now().Format(DateLayout)))
}

// Deliver writes jobs for username
func (s *DirSink) Deliver(ctx context.Context, username string, jobs []job.Posting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create delivery directory: %w", err)
	}

	path := s.Path(username)
	batch := Batch{Username: username, GeneratedAt: s.now()}

	existing, err := readBatch(path)
	if err != nil {
		return err
	}
	if existing != nil {
		batch.Jobs = existing.Jobs
	}
	batch.Jobs = mergeJobs(batch.Jobs, jobs)

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode delivery: %w", err)
	}
	return writeFileAtomic(path, data)
}

func (s *DirSink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func readBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read delivery file: %w", err)
	}
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse delivery file %s: %w", filepath.Base(path), err)
	}
	return &b, nil
}

// mergeJobs appends the postings of next whose URL is not already present
func mergeJobs(prev, next []job.Posting) []job.Posting {
	seen := make(map[string]bool, len(prev))
	merged := make([]job.Posting, 0, len(prev)+len(next))
	for _, p := range prev {
		seen[p.URL] = true
		merged = append(merged, p)
	}
	for _, p := range next {
		if seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		merged = append(merged, p)
	}
	return merged
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".delivery-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write delivery: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write delivery: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write delivery: %w", err)
	}
	return nil
}

// safeName keeps usernames from escaping the delivery directory
func safeName(username string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.TrimLeft(username, "."))
}

// WriterSink renders each list to W, table or JSON
type WriterSink struct {
	W      io.Writer
	Format string

	mu sync.Mutex
}

// NewWriterSink creates a WriterSink
func NewWriterSink(w io.Writer, format string) *WriterSink {
	return &WriterSink{W: w, Format: format}
}

// Deliver writes jobs for username
func (s *WriterSink) Deliver(ctx context.Context, username string, jobs []job.Posting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Format == output.FormatJSON {
		return output.JSONTo(s.W, Batch{Username: username, GeneratedAt: time.Now(), Jobs: jobs})
	}

	fmt.Fprintf(s.W, "\n%s (%d jobs)\n", username, len(jobs))
	return output.TableTo(s.W, jobs)
}
