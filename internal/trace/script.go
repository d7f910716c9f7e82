package trace

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxAtMS is the largest millisecond offset that still fits a time.Duration.
const MaxAtMS = math.MaxInt64 / int64(time.Millisecond)

// ScriptStep is one timestamped key press.
type ScriptStep struct {
	AtMS int64  `json:"at_ms" yaml:"at_ms"`
	Key  string `json:"key" yaml:"key"`
	Line int    `json:"line" yaml:"-"`
}

// ScriptError reports a malformed key script line.
type ScriptError struct {
	Line    int
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseScript reads a key script:
//
//	# at_ms key
//	0    down
//	120  right
//	260  k
//
// Timestamps are milliseconds, at most MaxAtMS, and must not decrease.
func ParseScript(r io.Reader) ([]ScriptStep, error) {
	sc := bufio.NewScanner(r)

	var steps []ScriptStep
	var last int64
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, &ScriptError{Line: lineNo, Message: "expected '<at_ms> <key>'"}
		}
		at, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || at < 0 {
			return nil, &ScriptError{Line: lineNo, Message: fmt.Sprintf("invalid timestamp %q", fields[0])}
		}
		if at > MaxAtMS {
			return nil, &ScriptError{Line: lineNo, Message: fmt.Sprintf("timestamp %d exceeds %d", at, MaxAtMS)}
		}
		if at < last {
			return nil, &ScriptError{Line: lineNo, Message: fmt.Sprintf("timestamp %d goes backwards (previous %d)", at, last)}
		}
		last = at
		steps = append(steps, ScriptStep{AtMS: at, Key: fields[1], Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return steps, nil
}

// ParseScriptFile reads a key script from disk.
func ParseScriptFile(path string) ([]ScriptStep, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()

	steps, err := ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}
