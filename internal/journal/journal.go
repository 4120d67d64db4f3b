// Package journal keeps a hash-chained JSONL record of edits made to env
// files. Each line stores the SHA-256 of the line before it, so removing or
// rewriting an entry breaks the chain.
package journal

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	journalDir  = ".envedit"
	journalFile = "journal.jsonl"
)

var (
	ErrNoJournal = errors.New("no journal found")
	mu           sync.Mutex

	// runID ties together all entries written by one process.
	runID = uuid.NewString()
)

type Op string

const (
	OpSet     Op = "set"
	OpRemove  Op = "remove"
	OpImport  Op = "import"
	OpMerge   Op = "merge"
	OpFill    Op = "fill"
	OpBackup  Op = "backup"
	OpRestore Op = "restore"
	OpMCPCall Op = "mcp_call"
)

type Entry struct {
	Timestamp time.Time `json:"ts"`
	Op        Op        `json:"op"`
	File      string    `json:"file,omitempty"`
	Keys      []string  `json:"keys,omitempty"`
	Source    string    `json:"source,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	PrevHash  string    `json:"prev_hash"`
}

type EntrySummary struct {
	Timestamp string   `json:"ts"`
	Op        string   `json:"op"`
	File      string   `json:"file,omitempty"`
	Keys      []string `json:"keys,omitempty"`
	Source    string   `json:"source,omitempty"`
	Tool      string   `json:"tool,omitempty"`
	RunID     string   `json:"run_id,omitempty"`
}

// Path returns the journal location for a directory holding env files.
func Path(dir string) string {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return filepath.Join(dir, journalDir, journalFile)
}

func lastHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var lastLine string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lastLine = scanner.Text()
	}

	if lastLine == "" {
		return ""
	}

	return hashLine(lastLine)
}

func hashLine(line string) string {
	hash := sha256.Sum256([]byte(line))
	return hex.EncodeToString(hash[:])
}

func Log(dir string, op Op, opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()

	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ensure journal dir: %w", err)
	}

	entry := &Entry{
		Timestamp: time.Now().UTC(),
		Op:        op,
		RunID:     runID,
		PrevHash:  lastHash(path),
	}

	for _, opt := range opts {
		opt(entry)
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, string(b)); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}

	return nil
}

type Option func(*Entry)

// WithFile records the edited file by base name.
func WithFile(path string) Option {
	return func(e *Entry) {
		e.File = filepath.Base(path)
	}
}

// WithKeys records the keys touched. Values are never written.
func WithKeys(keys []string) Option {
	return func(e *Entry) {
		e.Keys = keys
	}
}

// WithSource records where values came from, e.g. the merged file.
func WithSource(source string) Option {
	return func(e *Entry) {
		e.Source = source
	}
}

func WithTool(tool string) Option {
	return func(e *Entry) {
		e.Tool = tool
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoJournal
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return lines, nil
}

func Show(dir string, lastN int) ([]EntrySummary, error) {
	lines, err := readLines(Path(dir))
	if err != nil {
		return nil, err
	}

	if lastN > 0 && len(lines) > lastN {
		lines = lines[len(lines)-lastN:]
	}

	var entries []EntrySummary
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, EntrySummary{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Op:        string(e.Op),
			File:      e.File,
			Keys:      e.Keys,
			Source:    e.Source,
			Tool:      e.Tool,
			RunID:     e.RunID,
		})
	}

	return entries, nil
}

type VerifyResult struct {
	TotalEntries int
	// Breaks holds 1-based line numbers whose prev_hash does not match.
	Breaks []int
}

func (r *VerifyResult) OK() bool {
	return len(r.Breaks) == 0
}

func Verify(dir string) (*VerifyResult, error) {
	lines, err := readLines(Path(dir))
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{TotalEntries: len(lines)}

	for i, line := range lines {
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			result.Breaks = append(result.Breaks, i+1)
			continue
		}

		want := ""
		if i > 0 {
			want = hashLine(lines[i-1])
		}
		if entry.PrevHash != want {
			result.Breaks = append(result.Breaks, i+1)
		}
	}

	return result, nil
}
