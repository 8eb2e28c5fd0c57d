// Package console implements the user-facing half of the shell: tokenizing
// input lines (spec §4.E) and dispatching the three verbs against the
// driver registry (spec §4.F).
package console

// Tokenize splits line on ASCII space only, dropping empty fields the way
// C's strtok collapses repeated delimiters. Unlike strings.Fields it does
// not treat tabs or other whitespace as delimiters — spec §4.E is explicit
// that space is the sole delimiter.
func Tokenize(line string) []string {
	var tokens []string
	start := -1
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			if start >= 0 {
				tokens = append(tokens, line[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, line[start:])
	}
	return tokens
}
