// Package frame turns a raw transport read into a cleaned data line,
// grounded on original_source's clean_string.
package frame

import "strings"

// Clean removes embedded carriage-return/newline noise from a decoded
// instrument read.
//
// Non-multiline readings only truncate at a CR or NL that is NOT the
// first character: a leading CR/NL is left in place. This asymmetry is
// intentional (Open Question 2) — it matches the original
// byte-for-byte. Nothing downstream strips the leading byte: the writer
// records the cleaned string as-is.
//
// Multiline readings are instead split on sentenceDelimiter and rejoined
// with delimiter, producing one flattened row per physical reading.
func Clean(data string, multiline bool, delimiter, sentenceDelimiter string) string {
	if multiline {
		return cleanMultiline(data, delimiter, sentenceDelimiter)
	}
	return cleanSingleLine(data)
}

func cleanSingleLine(data string) string {
	if i := strings.Index(data, "\r"); i > 0 {
		data = data[:i]
	}
	if i := strings.Index(data, "\n"); i > 0 {
		data = data[:i]
	}
	return data
}

func cleanMultiline(data, delimiter, sentenceDelimiter string) string {
	var b strings.Builder
	first := true
	for {
		idx := strings.Index(data, sentenceDelimiter)
		if idx < 0 {
			break
		}
		if !first {
			b.WriteString(delimiter)
		}
		first = false
		b.WriteString(data[:idx])
		data = data[idx+len(sentenceDelimiter):]
	}
	return b.String()
}
