package runner

import (
	"github.com/raptorforge/raptor/recipe"
	"github.com/raptorforge/raptor/sandbox"
)

// clientAdapter adapts *sandbox.Client to the SandboxClient interface:
// Go doesn't let a method returning a concrete *sandbox.File satisfy an
// interface method declared to return the RemoteFile interface, even
// though *sandbox.File implements it, so this thin wrapper bridges the
// two.
type clientAdapter struct {
	c *sandbox.Client
}

// NewSandboxClient wraps a live sandbox connection as a SandboxClient.
func NewSandboxClient(c *sandbox.Client) SandboxClient {
	return clientAdapter{c: c}
}

func (a clientAdapter) Run(argv []string) error { return a.c.Run(argv) }

func (a clientAdapter) CreateFile(path string, owner *recipe.Chown, mode *uint16) (RemoteFile, error) {
	return a.c.CreateFile(path, owner, mode)
}

func (a clientAdapter) CreateDir(path string, parents bool, owner *recipe.Chown, mode *uint16) error {
	return a.c.CreateDir(path, parents, owner, mode)
}

func (a clientAdapter) Chdir(dir string) error { return a.c.Chdir(dir) }

func (a clientAdapter) Setenv(key, value string) error { return a.c.Setenv(key, value) }
