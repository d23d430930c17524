package sandbox

// File is a handle to a file opened inside the sandbox via
// Client.CreateFile. Writes are streamed to the agent one frame at a
// time; Close must be called to release the agent's own open handle.
type File struct {
	client *Client
	fd     int
}

// Write sends buf to the sandbox file, returning a short write only if
// the RPC itself fails.
func (f *File) Write(buf []byte) (int, error) {
	if _, err := f.client.rpc(Request{Kind: KindWriteFd, WriteFd: &RequestWriteFd{Fd: f.fd, Data: buf}}); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Close releases the agent-side file handle. Unlike the Rust Drop impl
// this wraps, a failed Close is reported to the caller instead of being
// silently swallowed.
func (f *File) Close() error {
	_, err := f.client.rpc(Request{Kind: KindCloseFd, CloseFd: &RequestCloseFd{Fd: f.fd}})
	return err
}
