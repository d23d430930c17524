package recipe

import "fmt"

// word is one whitespace-delimited token from a recipe line, with quoted
// segments already unescaped. Quoted tracks whether any part of the token
// came from a quoted-string segment, which distinguishes a literal string
// argument value from a bareword (bool/int/lookup) one.
type word struct {
	text   string
	quoted bool
}

// ErrLexRecipe is returned for malformed recipe source.
type ErrLexRecipe struct {
	Reason string
}

func (e *ErrLexRecipe) Error() string {
	return "recipe: " + e.Reason
}

// tokenizeLine splits one logical (continuation-joined) line into words.
// A word may mix bare characters and quoted segments, e.g. key="a b".
// Quoted segments support only \t and \n escapes, matching the grammar's
// string_escape_seq production.
func tokenizeLine(line string) ([]word, error) {
	var words []word
	i, n := 0, len(line)

	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}

		var buf []byte
		quoted := false

		for i < n && line[i] != ' ' && line[i] != '\t' {
			c := line[i]
			if c != '"' {
				buf = append(buf, c)
				i++
				continue
			}

			quoted = true
			i++
			closed := false
			for !closed {
				if i >= n {
					return nil, &ErrLexRecipe{Reason: "unterminated quoted string"}
				}
				c2 := line[i]
				switch {
				case c2 == '"':
					i++
					closed = true
				case c2 == '\\':
					if i+1 >= n {
						return nil, &ErrLexRecipe{Reason: "unterminated escape sequence"}
					}
					switch line[i+1] {
					case 't':
						buf = append(buf, '\t')
					case 'n':
						buf = append(buf, '\n')
					default:
						return nil, &ErrLexRecipe{Reason: fmt.Sprintf("unsupported escape \\%c", line[i+1])}
					}
					i += 2
				default:
					buf = append(buf, c2)
					i++
				}
			}
		}

		words = append(words, word{text: string(buf), quoted: quoted})
	}

	return words, nil
}
