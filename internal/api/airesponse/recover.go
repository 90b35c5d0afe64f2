// Package airesponse turns the variably-shaped text a language model returns
// into a structure the persistence layer can trust. Recovery is an ordered
// strategy list; a blob that survives parsing but fails shape validation is
// rejected the same way as one that never parsed.
package airesponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// ShapeFunc validates the minimal structure of a recovered object.
// It may rewrite the object in place (key synonym folding).
type ShapeFunc func(obj map[string]any) error

// Recover extracts a single JSON object from raw model output.
//
// Strategies, in order, stopping at the first that parses and passes validate:
//  1. direct parse of the trimmed text
//  2. parse after stripping a markdown code fence
//  3. parse of the first-{ ... last-} span
//  4. parse after decoding common escape sequences in each candidate above
func Recover(raw string, validate ShapeFunc) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	candidates := []string{trimmed}

	if fenced := stripFence(trimmed); fenced != trimmed {
		candidates = append(candidates, fenced)
	}

	span, hasSpan := braceSpan(trimmed)
	if hasSpan {
		candidates = append(candidates, span)
	}

	// Escape-sequence recovery retries every earlier candidate.
	for _, c := range candidates[:len(candidates):len(candidates)] {
		if unescaped := unescape(c); unescaped != c {
			candidates = append(candidates, unescaped)
		}
	}

	var lastErr error
	for _, candidate := range candidates {
		obj, err := parseObject(candidate, validate)
		if err == nil {
			return obj, nil
		}
		lastErr = err
	}

	return nil, unparseable(trimmed, lastErr)
}

func parseObject(candidate string, validate ShapeFunc) (map[string]any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, err
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsed value is %T, not an object", parsed)
	}
	if validate != nil {
		if err := validate(obj); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// stripFence removes a wrapping markdown code fence, with or without a
// language tag.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	out := strings.TrimPrefix(s, "```")
	// Drop a language tag such as "json" up to the first newline.
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(out[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
			out = out[idx+1:]
		}
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}

// braceSpan returns the substring between the first '{' and the last '}'.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	return s[start : end+1], true
}

// unescape decodes the escape sequences models sometimes leave literally in
// their output, most commonly \" for quotes.
var unescaper = strings.NewReplacer(
	`\"`, `"`,
	`\n`, "\n",
	`\t`, "\t",
)

func unescape(s string) string {
	return unescaper.Replace(s)
}

// unparseable builds the classified failure, carrying a diagnostic context
// window around the failure offset for logs. The snippet is never shown to
// end users.
func unparseable(text string, cause error) error {
	msg := "response did not contain a recoverable JSON object"
	var syntaxErr *json.SyntaxError
	if errors.As(cause, &syntaxErr) {
		offset := int(syntaxErr.Offset)
		msg = fmt.Sprintf("%s (at offset %d: %q)", msg, offset, contextWindow(text, offset, 40))
	} else if cause != nil {
		msg = fmt.Sprintf("%s (%s)", msg, cause)
	}
	return types.NewExternalError(types.ErrKindUnparseable, msg, cause)
}

func contextWindow(s string, offset, radius int) string {
	start := offset - radius
	if start < 0 {
		start = 0
	}
	end := offset + radius
	if end > len(s) {
		end = len(s)
	}
	if start > len(s) {
		start = len(s)
	}
	return s[start:end]
}
