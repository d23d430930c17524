package plan

import (
	"github.com/raptorforge/raptor/build"
	"github.com/raptorforge/raptor/template"
)

type memReader map[string]string

func (m memReader) ReadFile(path string) (string, error) {
	s, ok := m[path]
	if !ok {
		return "", &missingFileError{path}
	}
	return s, nil
}

type missingFileError struct{ path string }

func (e *missingFileError) Error() string { return "no such file: " + e.path }

func newTestBuilder(files memReader, baseDir string) *build.Builder {
	return &build.Builder{
		Loader:  template.NewLoader(files, nil),
		Engine:  template.TextEngine{},
		BaseDir: baseDir,
	}
}
