package logger

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/exportmap/internal/ui/style"
)

// messager matches zerr.Error, which can report its own message without the chain.
type messager interface {
	Message() string
}

type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one level of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks err from the outermost wrapper to the root cause.
// zerr levels without a message of their own only contribute metadata to the next level.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
			break
		}

		var meta map[string]any
		if md, ok := current.(metadataer); ok {
			meta = md.Metadata()
		}
		if meta == nil && len(pending) > 0 {
			meta = make(map[string]any, len(pending))
		}
		for k, v := range pending {
			meta[k] = v
		}
		pending = nil

		if m.Message() == "" && errors.Unwrap(current) != nil {
			pending = meta
		} else {
			entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: meta})
		}
		current = errors.Unwrap(current)
	}

	return entries
}

// formatErrorEntries renders entries as "Error: <outer>" followed by a "Caused by:" list.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			lines = append(lines, formatMetadata(entry.Metadata, "       ")...)
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    "+style.Arrow+" "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
		lines = append(lines, formatMetadata(entry.Metadata, "      ")...)
	}

	return strings.Join(lines, "\n")
}

func formatMetadata(meta map[string]any, indent string) []string {
	if len(meta) == 0 {
		return nil
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, meta[k]))
	}
	return lines
}
