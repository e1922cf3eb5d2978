package kickstarter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single scrape line. Full project payloads with
// embedded description HTML run into megabytes.
const maxLineSize = 64 * 1024 * 1024

// ForEachLine streams non-empty lines from r, calling fn with the 1-based
// line number. fn returning an error aborts the scan.
func ForEachLine(r io.Reader, fn func(n int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input at line %d: %w", n, err)
	}
	return nil
}

// LoadProjects reads a web-database file (JSON array of Project).
func LoadProjects(path string) ([]Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening web database: %w", err)
	}
	defer f.Close()

	var projects []Project
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&projects); err != nil {
		return nil, fmt.Errorf("decoding web database %s: %w", path, err)
	}
	return projects, nil
}

// LoadPreInputs reads a pre-input file (JSON object keyed by project id).
func LoadPreInputs(path string) (map[string]PreInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pre-input data: %w", err)
	}
	defer f.Close()

	var inputs map[string]PreInput
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decoding pre-input data %s: %w", path, err)
	}
	return inputs, nil
}

// WriteJSONFile marshals v with indentation to path.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// ArrayWriter writes a JSON array one element at a time, so a stage never
// has to hold its full output in memory.
type ArrayWriter struct {
	w      *bufio.Writer
	count  int
	closed bool
}

// NewArrayWriter starts a JSON array on w.
func NewArrayWriter(w io.Writer) *ArrayWriter {
	return &ArrayWriter{w: bufio.NewWriter(w)}
}

// Write appends one element to the array.
func (a *ArrayWriter) Write(v any) error {
	if a.closed {
		return fmt.Errorf("write after close")
	}
	if a.count == 0 {
		if _, err := a.w.WriteString("[\n"); err != nil {
			return err
		}
	} else {
		if _, err := a.w.WriteString(",\n"); err != nil {
			return err
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding element %d: %w", a.count, err)
	}
	if _, err := a.w.Write(data); err != nil {
		return err
	}
	a.count++
	return nil
}

// Count returns the number of elements written so far.
func (a *ArrayWriter) Count() int {
	return a.count
}

// Close terminates the array and flushes buffered output.
func (a *ArrayWriter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.count == 0 {
		if _, err := a.w.WriteString("["); err != nil {
			return err
		}
	}
	if _, err := a.w.WriteString("\n]\n"); err != nil {
		return err
	}
	return a.w.Flush()
}
