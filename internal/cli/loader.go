package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/ftality/internal/config"
	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/grammar"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Rule source errors
	ErrCodeMissingSeparator = "E201" // Line without "->" or tokens without a comma
	ErrCodeEmptySequence    = "E202" // Nothing before "->"
	ErrCodeEmptyLabel       = "E203" // Nothing after "->"
	ErrCodeReadFailed       = "E204" // Rule source unreadable
	ErrCodeInvalidSource    = "E205" // Structurally invalid CUE source

	// Configuration errors
	ErrCodeInvalidConfig = "E301" // Config file, env or flags rejected
	ErrCodeInvalidScript = "E302" // Key script malformed
)

// LoadError represents an error that occurred while loading a rule source
// or its settings.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Line    int // 1-based; 0 when not tied to a line
}

func (e *LoadError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Code, e.Message)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Details returns the position fields for CLIError.Details, or nil.
func (e *LoadError) Details() map[string]any {
	if e.Path == "" && e.Line == 0 {
		return nil
	}
	d := map[string]any{}
	if e.Path != "" {
		d["path"] = e.Path
	}
	if e.Line > 0 {
		d["line"] = e.Line
	}
	return d
}

// LoadGrammar parses the rule source at path, mapping failures to a
// *LoadError with a CLI error code.
func LoadGrammar(path string) (*grammar.Grammar, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules file not found: %s", path), Path: path}
		}
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Path: path}
	}

	g, err := grammar.Load(path)
	if err != nil {
		return nil, MapParseError(err)
	}
	return g, nil
}

// LoadEngine builds an engine config from a rule source and the bindings
// and timeout in cfg.
func LoadEngine(path string, cfg *config.Config) (*engine.Config, error) {
	g, err := LoadGrammar(path)
	if err != nil {
		return nil, err
	}

	explicit, err := cfg.ExplicitBindings()
	if err != nil {
		le := MapParseError(err)
		if le.Code == ErrCodeGeneric {
			le.Code = ErrCodeInvalidConfig
		}
		return nil, le
	}
	return engine.FromGrammar(g, explicit, cfg.EngineOptions()...), nil
}

// MapParseError converts a grammar error into a *LoadError.
func MapParseError(err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}

	pe, ok := grammar.AsParseError(err)
	if !ok {
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	msg := pe.Message
	if pe.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, pe.Err)
	}
	return &LoadError{
		Code:    parseErrorCode(pe.Kind),
		Message: msg,
		Path:    pe.Path,
		Line:    pe.Line,
	}
}

func parseErrorCode(k grammar.Kind) string {
	switch k {
	case grammar.KindMissingSeparator:
		return ErrCodeMissingSeparator
	case grammar.KindEmptySequence:
		return ErrCodeEmptySequence
	case grammar.KindEmptyLabel:
		return ErrCodeEmptyLabel
	case grammar.KindIO:
		return ErrCodeReadFailed
	case grammar.KindInvalidSource:
		return ErrCodeInvalidSource
	default:
		return ErrCodeGeneric
	}
}

// outputLoadError reports err through the formatter and returns the exit
// error for a command-level failure.
func outputLoadError(formatter *OutputFormatter, err error) error {
	le := MapParseError(err)
	var details any
	if d := le.Details(); d != nil {
		details = d
	}
	_ = formatter.Error(le.Code, le.Message, details)
	return reportedExitError(ExitCommandError, le.Code, err)
}
