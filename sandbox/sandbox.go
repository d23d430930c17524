package sandbox

import (
	"fmt"
	"net"
	"os"

	"github.com/google/uuid"
)

// socketDir holds the per-launch Unix sockets agents dial back on. Each
// Launch gets its own uuid-suffixed socket so concurrently launched
// sandboxes (the parallel build executor starts several at once) never
// collide on a shared path.
const socketDir = "/tmp"

func newSocketPath() string {
	return fmt.Sprintf("%s/raptor-sandbox-%s", socketDir, uuid.NewString())
}

// ExtraBind is a MOUNT --simple/--layers bind mount that must be in
// place before the sandbox's agent ever accepts a request, since nspawn
// only accepts bind/overlay specs at launch time.
type ExtraBind struct {
	Src, Dst string
	ReadOnly bool
}

// ExtraOverlay is a MOUNT --overlay layer stack presented read-only
// inside the sandbox at Dst.
type ExtraOverlay struct {
	Layers []string
	Dst    string
}

// Launch starts systemd-nspawn over the given overlay layers (lowest
// first) plus any extra binds/overlays a program's MOUNT instructions
// resolved to, and blocks until the in-namespace agent connects back or
// startTimeout elapses. agentBinary is the path to the raptor-agent
// binary, bind-mounted read-only into the namespace.
func Launch(layers []string, agentBinary string, binds []ExtraBind, overlays []ExtraOverlay) (*Client, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("launch: no layers given")
	}

	socketPath := newSocketPath()
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("removing stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", socketPath, err)
	}
	defer listener.Close()

	builder := NewSpawnBuilder().
		Quiet(true).
		Sudo(true).
		SettingsMode(SettingsFalse).
		RootOverlays(layers).
		BindRO(agentBinary, "/raptor-agent").
		BindRO(socketPath, socketPath).
		Console(ConsoleReadOnly).
		Directory(layers[0])

	for _, b := range binds {
		if b.ReadOnly {
			builder.BindRO(b.Src, b.Dst)
		} else {
			builder.Bind(b.Src, b.Dst)
		}
	}
	for _, o := range overlays {
		builder.Overlay(o.Layers, o.Dst)
	}

	cmd := builder.
		Arg("/raptor-agent").
		Arg(socketPath).
		Command()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting sandbox: %w", err)
	}

	conn, err := WaitForStartup(listener, cmd)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	return NewClient(cmd, conn), nil
}

// DialAgent is the in-namespace counterpart of Launch: it connects to
// the socket the host bind-mounted in and returns the connection for
// Agent.Serve to consume.
func DialAgent(socketName string) (net.Conn, error) {
	return net.Dial("unix", socketName)
}
