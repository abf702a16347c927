package handhistory

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var headerRe = regexp.MustCompile(`Hand #\w+`)

// IsHeader reports whether line opens a new hand.
func IsHeader(line string) bool {
	return headerRe.MatchString(line)
}

// Blocks splits a corpus into hand blocks. Each block starts at a header line
// and runs up to the next header or the end of input; text before the first
// header is discarded. The sequence is lazy and can be ranged over repeatedly.
func Blocks(corpus string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for offset := 0; offset <= len(corpus); {
			next := len(corpus) + 1
			line := corpus[offset:]
			if idx := strings.IndexByte(line, '\n'); idx >= 0 {
				line = line[:idx]
				next = offset + idx + 1
			}
			if IsHeader(line) {
				if start >= 0 && !yield(trimBlock(corpus[start:offset])) {
					return
				}
				start = offset
			}
			offset = next
		}
		if start >= 0 {
			yield(trimBlock(corpus[start:]))
		}
	}
}

func trimBlock(block string) string {
	return strings.TrimRight(block, "\r\n\t ")
}

// LoadCorpus reads a whole hand-history file. The file is closed before
// returning whether or not the read succeeds.
func LoadCorpus(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return "", fmt.Errorf("read corpus %s: %w", path, err)
	}
	return string(data), nil
}
