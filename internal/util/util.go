package util

import (
	"encoding/json"
	"runtime"
	"sort"
	"sync"

	"github.com/keshon/avc/internal/fs"
)

// WriteJSON marshals v and writes it atomically through fsys.
func WriteJSON(fsys fs.FS, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(fsys, path, data, 0o644)
}

// ReadJSON reads a JSON file and unmarshals it into v.
func ReadJSON(fsys fs.FS, path string, v any) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SortedKeys returns the keys of a map sorted alphabetically.
func SortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WorkerCount returns the number of workers for concurrent operations.
func WorkerCount() int {
	return runtime.NumCPU()
}

// Parallel runs fn concurrently for each item in inputs, limited by
// workerLimit. The first error encountered is returned.
func Parallel[T any](inputs []T, workerLimit int, fn func(T) error) error {
	errs := ParallelAll(inputs, workerLimit, fn)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ParallelAll runs fn concurrently for each item in inputs, limited by
// workerLimit, and returns every error in input order. Checkpoint creation
// needs the complete failure list, not just the first.
func ParallelAll[T any](inputs []T, workerLimit int, fn func(T) error) []error {
	if len(inputs) == 0 {
		return nil
	}
	if workerLimit < 1 {
		workerLimit = 1
	}

	perItem := make([]error, len(inputs))
	sem := make(chan struct{}, workerLimit)
	var wg sync.WaitGroup

	for i := range inputs {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			perItem[idx] = fn(inputs[idx])
		}(i)
	}

	wg.Wait()

	var errs []error
	for _, err := range perItem {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
