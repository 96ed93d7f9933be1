package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Console writer level abbreviations as written by zerolog.ConsoleWriter.
var levelTokens = map[string]zerolog.Level{
	"TRC": zerolog.TraceLevel,
	"DBG": zerolog.DebugLevel,
	"INF": zerolog.InfoLevel,
	"WRN": zerolog.WarnLevel,
	"ERR": zerolog.ErrorLevel,
	"FTL": zerolog.FatalLevel,
	"PNC": zerolog.PanicLevel,
}

// Level reports the level of a console-formatted log line. Lines without a
// recognizable level (continuations, JSON output) return zerolog.NoLevel.
func Level(line string) zerolog.Level {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return zerolog.NoLevel
	}
	if lvl, ok := levelTokens[fields[1]]; ok {
		return lvl
	}
	return zerolog.NoLevel
}

// Filter keeps lines at or above min. Lines with no level are kept.
func Filter(lines []string, min zerolog.Level) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if lvl := Level(line); lvl == zerolog.NoLevel || lvl >= min {
			out = append(out, line)
		}
	}
	return out
}
