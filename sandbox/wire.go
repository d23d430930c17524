// Package sandbox implements the host/agent protocol that drives commands
// inside a build's mount namespace: a length-prefixed request/response RPC
// carried over a Unix socket, an nspawn invocation builder, and the
// in-namespace agent loop that answers those requests.
package sandbox

// Request is one RPC call sent from the host to the in-namespace agent.
// Exactly one of the embedded fields is set; Kind says which.
type Request struct {
	Kind       RequestKind       `json:"kind"`
	Run        *RequestRun       `json:"run,omitempty"`
	CreateFile *RequestCreateFile `json:"createFile,omitempty"`
	CreateDir  *RequestCreateDir `json:"createDir,omitempty"`
	WriteFd    *RequestWriteFd   `json:"writeFd,omitempty"`
	CloseFd    *RequestCloseFd   `json:"closeFd,omitempty"`
	ChangeDir  *RequestChangeDir `json:"changeDir,omitempty"`
	SetEnv     *RequestSetEnv    `json:"setEnv,omitempty"`
}

// RequestKind tags which variant of Request is populated.
type RequestKind string

const (
	KindRun        RequestKind = "run"
	KindCreateFile RequestKind = "createFile"
	KindCreateDir  RequestKind = "createDir"
	KindWriteFd    RequestKind = "writeFd"
	KindCloseFd    RequestKind = "closeFd"
	KindChangeDir  RequestKind = "changeDir"
	KindSetEnv     RequestKind = "setEnv"
	KindShutdown   RequestKind = "shutdown"
)

// RequestRun execs a command and waits for it to exit, exactly as RUN does
// inside the build sandbox (argv[0] becomes both the executable and arg0).
type RequestRun struct {
	Argv []string `json:"argv"`
}

// RequestCreateFile opens (creating/truncating) a file for writing and
// returns a handle the host addresses by Fd in later WriteFd/CloseFd
// calls. Owner fields are strings accepting either a numeric id or a
// name; empty means "leave unset".
type RequestCreateFile struct {
	Path  string  `json:"path"`
	User  string  `json:"user,omitempty"`
	Group string  `json:"group,omitempty"`
	Mode  *uint32 `json:"mode,omitempty"`
}

// RequestCreateDir creates a directory (MKDIR), optionally with --parents
// semantics, and an optional owner/mode.
type RequestCreateDir struct {
	Path    string  `json:"path"`
	Parents bool    `json:"parents"`
	User    string  `json:"user,omitempty"`
	Group   string  `json:"group,omitempty"`
	Mode    *uint32 `json:"mode,omitempty"`
}

// RequestWriteFd appends data to a previously opened file handle.
type RequestWriteFd struct {
	Fd   int    `json:"fd"`
	Data []byte `json:"data"`
}

// RequestCloseFd releases a previously opened file handle.
type RequestCloseFd struct {
	Fd int `json:"fd"`
}

// RequestChangeDir changes the agent's own working directory, affecting
// every RUN issued after it.
type RequestChangeDir struct {
	Dir string `json:"dir"`
}

// RequestSetEnv sets an environment variable inherited by every RUN
// issued after it.
type RequestSetEnv struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the agent's reply to one Request: either a non-negative
// result (an fd for CreateFile, an exit code for Run, 0 otherwise) or an
// error message.
type Response struct {
	Ok  *int    `json:"ok,omitempty"`
	Err *string `json:"err,omitempty"`
}

// Result returns the response as a (value, error) pair, the shape every
// RPC caller actually wants.
func (r Response) Result() (int, error) {
	if r.Err != nil {
		return 0, &RPCError{Message: *r.Err}
	}
	if r.Ok != nil {
		return *r.Ok, nil
	}
	return 0, nil
}

// RPCError wraps an error message the agent reported back over the wire.
type RPCError struct {
	Message string
}

func (e *RPCError) Error() string { return e.Message }
