package recipe

import "fmt"

// Origin records where a Statement came from: the source file and the byte
// span within it, so diagnostics can point back at the recipe source.
type Origin struct {
	Path  string
	Start int
	End   int
}

func (o Origin) String() string {
	return fmt.Sprintf("%s:%d-%d", o.Path, o.Start, o.End)
}
