package sandbox

import (
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/raptorforge/raptor/recipe"
)

// startTimeout bounds how long WaitForStartup waits for the in-namespace
// agent to dial back before giving up and reporting failure.
const startTimeout = 2 * time.Second

// Client is the host-side handle to a running sandbox: the nspawn
// process and the control connection the in-namespace agent dialed back
// on.
type Client struct {
	proc *exec.Cmd
	conn net.Conn
}

// NewClient wraps an already-accepted connection to a running agent
// process.
func NewClient(proc *exec.Cmd, conn net.Conn) *Client {
	return &Client{proc: proc, conn: conn}
}

// WaitForStartup accepts the agent's callback connection on listener,
// racing it against the nspawn process exiting early and against
// startTimeout. A process exiting before it connects is reported as a
// distinct error from a plain timeout, since the two usually point at
// different root causes (a broken launch vs. a hung agent).
func WaitForStartup(listener net.Listener, proc *exec.Cmd) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		conn, err := listener.Accept()
		accepted <- result{conn, err}
	}()

	exited := make(chan error, 1)
	go func() {
		exited <- proc.Wait()
	}()

	select {
	case r := <-accepted:
		if r.err != nil {
			return nil, fmt.Errorf("accepting agent connection: %w", r.err)
		}
		return r.conn, nil
	case err := <-exited:
		return nil, fmt.Errorf("sandbox process exited before connecting: %w", err)
	case <-time.After(startTimeout):
		return nil, fmt.Errorf("timed out waiting %s for sandbox to connect", startTimeout)
	}
}

// rpc sends req and returns the agent's result, translating an error
// response into a Go error.
func (c *Client) rpc(req Request) (int, error) {
	if err := WriteFrame(c.conn, req); err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	var res Response
	if err := ReadFrame(c.conn, &res); err != nil {
		return 0, fmt.Errorf("reading response: %w", err)
	}
	return res.Result()
}

// Run executes argv inside the sandbox and returns an error unless it
// exits 0.
func (c *Client) Run(argv []string) error {
	code, err := c.rpc(Request{Kind: KindRun, Run: &RequestRun{Argv: argv}})
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("command %v exited with status %d", argv, code)
	}
	return nil
}

// CreateFile opens path inside the sandbox for writing and returns a
// handle that streams writes back over the control connection.
func (c *Client) CreateFile(path string, owner *recipe.Chown, mode *uint16) (*File, error) {
	req := RequestCreateFile{Path: path}
	if owner != nil {
		req.User = owner.User
		req.Group = owner.Group
	}
	if mode != nil {
		m := uint32(*mode)
		req.Mode = &m
	}

	fd, err := c.rpc(Request{Kind: KindCreateFile, CreateFile: &req})
	if err != nil {
		return nil, err
	}
	return &File{client: c, fd: fd}, nil
}

// CreateDir creates path inside the sandbox, with --parents semantics
// when parents is true.
func (c *Client) CreateDir(path string, parents bool, owner *recipe.Chown, mode *uint16) error {
	req := RequestCreateDir{Path: path, Parents: parents}
	if owner != nil {
		req.User = owner.User
		req.Group = owner.Group
	}
	if mode != nil {
		m := uint32(*mode)
		req.Mode = &m
	}
	_, err := c.rpc(Request{Kind: KindCreateDir, CreateDir: &req})
	return err
}

// Chdir changes the sandbox agent's working directory, affecting every
// Run issued after it.
func (c *Client) Chdir(dir string) error {
	_, err := c.rpc(Request{Kind: KindChangeDir, ChangeDir: &RequestChangeDir{Dir: dir}})
	return err
}

// Setenv sets an environment variable inherited by every Run issued
// after it.
func (c *Client) Setenv(key, value string) error {
	_, err := c.rpc(Request{Kind: KindSetEnv, SetEnv: &RequestSetEnv{Key: key, Value: value}})
	return err
}

// Close tells the agent to shut down, then waits for the nspawn process
// to exit.
func (c *Client) Close() error {
	if err := WriteFrame(c.conn, Request{Kind: KindShutdown}); err != nil {
		return err
	}
	if tc, ok := c.conn.(interface{ CloseWrite() error }); ok {
		_ = tc.CloseWrite()
	}
	return c.proc.Wait()
}
