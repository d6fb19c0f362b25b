package shell

// Tokenize splits a finalized line into arguments.
//
// Runs of spaces separate tokens.  A token opening with a backtick,
// single quote or double quote runs until the matching quote — the
// quotes themselves are not part of the token, and any other quote
// character inside is preserved verbatim.  An unterminated quote runs
// to the end of the line.
//
// At most max tokens are collected (max <= 0 means unlimited); the
// final slot receives the remainder of the line verbatim.
func Tokenize(line string, max int) []string {
	var args []string

	i := 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i >= len(line) {
			break
		}

		delim := byte(' ')
		switch line[i] {
		case '`', '\'', '"':
			delim = line[i]
			i++
		}

		if max > 0 && len(args) == max-1 {
			args = append(args, line[i:])
			break
		}

		start := i
		for i < len(line) && line[i] != delim {
			i++
		}
		args = append(args, line[start:i])
		if i < len(line) {
			i++ // consume the closing delimiter
		}
	}
	return args
}
