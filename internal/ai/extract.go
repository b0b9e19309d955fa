package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	errNoJSON = errors.New("no JSON found in model output")

	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
)

// ExtractJSON pulls the JSON payload out of free-form model output: a fenced
// code block wins, otherwise the widest span between open and close.
func ExtractJSON(content string, open, close byte) (string, bool) {
	if m := fencedJSON.FindStringSubmatch(content); m != nil && strings.TrimSpace(m[1]) != "" {
		return m[1], true
	}

	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, close)
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

func decodeObject[T any](content string) (T, error) {
	return decode[T](content, '{', '}')
}

func decodeArray[T any](content string) (T, error) {
	return decode[T](content, '[', ']')
}

func decode[T any](content string, open, close byte) (T, error) {
	var out T
	raw, ok := ExtractJSON(content, open, close)
	if !ok {
		return out, errNoJSON
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, err
	}
	return out, nil
}
