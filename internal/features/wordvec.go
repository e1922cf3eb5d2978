package features

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WordVectors is a pretrained word-embedding table in GloVe text format:
// one "word v1 v2 ... vn" line per entry. It implements Encoder by
// averaging the vectors of the whitespace-separated tokens of the input;
// tokens not in the vocabulary are skipped, and an input with no known
// tokens encodes to the zero vector.
type WordVectors struct {
	vectors   map[string][]float32
	dimension int
}

// LoadWordVectors reads a GloVe text-format file.
func LoadWordVectors(path string) (*WordVectors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word vectors: %w", err)
	}
	defer f.Close()

	wv, err := ReadWordVectors(f)
	if err != nil {
		return nil, fmt.Errorf("reading word vectors %s: %w", path, err)
	}
	return wv, nil
}

// ReadWordVectors parses GloVe text-format lines from r.
func ReadWordVectors(r io.Reader) (*WordVectors, error) {
	wv := &WordVectors{vectors: make(map[string][]float32)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		word := fields[0]
		vec := make([]float32, len(fields)-1)
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing component %d: %w", n, i, err)
			}
			vec[i] = float32(v)
		}
		if wv.dimension == 0 {
			wv.dimension = len(vec)
		} else if len(vec) != wv.dimension {
			return nil, fmt.Errorf("line %d: dimension %d does not match table dimension %d", n, len(vec), wv.dimension)
		}
		wv.vectors[word] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(wv.vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors found", ErrInvalidConfig)
	}
	return wv, nil
}

// Encode averages the vectors of the known tokens of text.
func (wv *WordVectors) Encode(_ context.Context, text string) ([]float32, error) {
	sum := make([]float64, wv.dimension)
	known := 0

	for _, token := range strings.Fields(strings.ToLower(strings.TrimSpace(text))) {
		vec, ok := wv.vectors[token]
		if !ok {
			continue
		}
		known++
		for i, v := range vec {
			sum[i] += float64(v)
		}
	}

	out := make([]float32, wv.dimension)
	if known == 0 {
		return out, nil
	}
	for i, v := range sum {
		out[i] = float32(v / float64(known))
	}
	return out, nil
}

// Dimension returns the vector width of the table.
func (wv *WordVectors) Dimension() int {
	return wv.dimension
}

// Close is a no-op; the table lives in memory.
func (wv *WordVectors) Close() error {
	return nil
}

// Contains reports whether word is in the vocabulary.
func (wv *WordVectors) Contains(word string) bool {
	_, ok := wv.vectors[word]
	return ok
}

// Len returns the vocabulary size.
func (wv *WordVectors) Len() int {
	return len(wv.vectors)
}
