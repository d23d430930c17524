package runner

import (
	"bytes"
	"io"
	"os/exec"

	"github.com/hinshun/vt10x"
)

// RunWithPTY runs cmd attached to a pty-backed virtual terminal instead
// of plain pipes, so a job that emits cursor moves / color codes (most
// build tooling does) renders the same way it would in an interactive
// shell. Output is captured into the returned string once the command's
// output stream reaches EOF.
func RunWithPTY(cmd *exec.Cmd) (string, error) {
	console, _, err := vt10x.NewVT10XConsole()
	if err != nil {
		return "", err
	}
	defer console.Close()

	var out bytes.Buffer

	cmd.Stdin = console.Tty()
	cmd.Stdout = io.MultiWriter(console.Tty(), &out)
	cmd.Stderr = io.MultiWriter(console.Tty(), &out)

	if err := cmd.Start(); err != nil {
		return "", err
	}

	done := make(chan error, 1)
	go func() {
		_, err := console.ExpectEOF()
		done <- err
	}()

	waitErr := cmd.Wait()
	_ = console.Tty().Close()
	<-done

	return out.String(), waitErr
}
