package draft

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"regexp"
)

// placeholder matches one \VAR{...} reference. The key is the shortest text
// up to the next closing brace on the same line.
var placeholder = regexp.MustCompile(`\\VAR\{(.*?)\}`)

// lines yields each line of r, including its terminating newline.
func lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReader(r)

		for {
			line, err := br.ReadString('\n')
			if line != "" && !yield(line, nil) {
				return
			}

			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield("", err)

				return
			}
		}
	}
}

// Keys returns an iterator over the distinct keys referenced by \VAR{...}
// placeholders in r, in order of first appearance. Keys are compared as
// exact text. A placeholder without a closing brace on its line is ignored.
// A read error is yielded once, after which iteration stops.
func Keys(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		seen := make(map[string]struct{})

		for line, err := range lines(r) {
			if err != nil {
				yield("", err)

				return
			}

			for _, m := range placeholder.FindAllStringSubmatch(line, -1) {
				if _, ok := seen[m[1]]; ok {
					continue
				}

				seen[m[1]] = struct{}{}

				if !yield(m[1], nil) {
					return
				}
			}
		}
	}
}

// Scan returns the distinct keys referenced in r, in order of first
// appearance.
func Scan(r io.Reader) ([]string, error) {
	var keys []string

	for key, err := range Keys(r) {
		if err != nil {
			return nil, err
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Count returns the total number of placeholders in r, duplicates included.
func Count(r io.Reader) (int, error) {
	n := 0

	for line, err := range lines(r) {
		if err != nil {
			return 0, err
		}

		n += len(placeholder.FindAllStringIndex(line, -1))
	}

	return n, nil
}
