// Command raptor-agent runs inside the sandbox namespace, dialing back
// to the host over the socket bind-mounted in by sandbox.Launch and
// serving CREATE_FILE/CREATE_DIR/CHDIR/SETENV/RUN requests until the
// host sends KindShutdown.
package main

import (
	"fmt"
	"os"

	"github.com/raptorforge/raptor/sandbox"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: raptor-agent <socket-path>")
		os.Exit(1)
	}

	conn, err := sandbox.DialAgent(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "raptor-agent: dialing host: %v\n", err)
		os.Exit(1)
	}

	if err := sandbox.NewAgent(conn).Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "raptor-agent: %v\n", err)
		os.Exit(1)
	}
}
