package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoJSONFound is matched by failures where the reply has no object delimiters.
	ErrNoJSONFound = errors.New("no JSON object found in model reply")
	// ErrInvalidJSON is matched by failures where the delimited text is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON object in model reply")
)

// fragmentPreview bounds how much of the offending text ends up in Error().
const fragmentPreview = 120

// ParseFailure reports why a model reply could not be turned into an object.
// Fragment holds the substring that failed to parse, never the prompt.
type ParseFailure struct {
	Kind     error
	Fragment string
	Err      error
}

func (e *ParseFailure) Error() string {
	if e.Fragment == "" {
		if e.Err != nil {
			return fmt.Sprintf("%v: %v", e.Kind, e.Err)
		}
		return e.Kind.Error()
	}
	preview := e.Fragment
	if len(preview) > fragmentPreview {
		preview = preview[:fragmentPreview]
		for !utf8.ValidString(preview) && len(preview) > 0 {
			preview = preview[:len(preview)-1]
		}
		preview += "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %v (fragment %q)", e.Kind, e.Err, preview)
	}
	return fmt.Sprintf("%v (fragment %q)", e.Kind, preview)
}

// Unwrap exposes both the failure kind and the decoder error to errors.Is / errors.As.
func (e *ParseFailure) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ExtractJSON pulls the outermost JSON object out of a model reply. The
// candidate spans from the first '{' to the last '}' inclusive, so prose before
// and after the object is tolerated. Braces inside string values are not
// special-cased.
func ExtractJSON(raw string) (map[string]any, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 {
		return nil, &ParseFailure{Kind: ErrNoJSONFound}
	}
	if end < start {
		return nil, &ParseFailure{Kind: ErrInvalidJSON, Fragment: raw[end : start+1]}
	}

	fragment := raw[start : end+1]
	var obj map[string]any
	if err := json.Unmarshal([]byte(fragment), &obj); err != nil {
		return nil, &ParseFailure{Kind: ErrInvalidJSON, Fragment: fragment, Err: err}
	}
	return obj, nil
}
