package job

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Read decodes a JSON array of postings
func Read(r io.Reader) ([]Posting, error) {
	var postings []Posting
	if err := json.NewDecoder(r).Decode(&postings); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode postings: %w", err)
	}
	return postings, nil
}

// ReadFile reads postings from a JSON file
func ReadFile(path string) ([]Posting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open postings file: %w", err)
	}
	defer f.Close()

	postings, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return postings, nil
}

// ReadFiles reads and concatenates postings from several files in argument order,
// so earlier sources win ties during deduplication
func ReadFiles(paths []string) ([]Posting, error) {
	var all []Posting
	for _, path := range paths {
		postings, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, postings...)
	}
	return all, nil
}
