package rules

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
)

// changeMarker identifies a version of the rule file
type changeMarker struct {
	exists  bool
	modTime time.Time
	size    int64
}

func (m changeMarker) equals(other changeMarker) bool {
	return m.exists == other.exists && m.modTime.Equal(other.modTime) && m.size == other.size
}

func statFile(path string) (changeMarker, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return changeMarker{}, nil
		}

		return changeMarker{}, err
	}

	return changeMarker{
		exists:  true,
		modTime: info.ModTime(),
		size:    info.Size(),
	}, nil
}

// readRuleFile returns the normalized, de-duplicated domains in file order.
// A missing file is an empty list.
func readRuleFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}

		return nil, err
	}
	defer f.Close()

	return parseRules(f)
}

func parseRules(r io.Reader) ([]string, error) {
	result := make([]string, 0)
	seen := make(map[string]struct{})

	reader := bufio.NewReader(r)

	for {
		// no line length limit, a single long line must not fail the whole file
		line, err := reader.ReadString('\n')

		if domain := processLine(line); domain != "" {
			if _, found := seen[domain]; !found {
				seen[domain] = struct{}{}
				result = append(result, domain)
			}
		}

		if errors.Is(err, io.EOF) {
			return result, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

// processLine returns the domain of a rule line or "" for blank and comment lines
func processLine(line string) string {
	line = strings.TrimSpace(line)

	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}

	return strings.ToLower(line)
}

// NormalizeDomain trims and lowercases user input
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
