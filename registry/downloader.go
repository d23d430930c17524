package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/raptorforge/raptor/digest"
)

// ProgressFunc is called as blob bytes arrive, with the cumulative bytes
// written and the blob's declared total (0 if the registry sent no
// Content-Length).
type ProgressFunc func(written, total int64)

// Downloader pulls manifests and content-addressed blobs into a local
// directory tree rooted at Root, skipping any blob already present at its
// full declared size.
type Downloader struct {
	Root   string
	HTTP   *http.Client
	Client *Client
}

// NewDownloader creates a Downloader rooted at dir, using httpClient (or
// http.DefaultClient) for all requests.
func NewDownloader(dir string, httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{Root: dir, HTTP: httpClient}
}

// LayerPath returns the local path a blob digest downloads to.
func (d *Downloader) LayerPath(dg digest.Digest) string {
	return filepath.Join(d.Root, "layer", dg.String())
}

func (d *Downloader) manifestPath(name string) string {
	return filepath.Join(d.Root, "manifest", name+".json")
}

// DownloadBlob fetches one blob by digest into the local store, skipping
// the transfer if a file of the expected size already exists there. The
// write goes through a ".tmp" sibling and an atomic rename so a half-written
// file is never observed at the final path.
func (d *Downloader) DownloadBlob(client *Client, dg digest.Digest, size int64, progress ProgressFunc) error {
	dst := d.LayerPath(dg)
	if info, err := os.Stat(dst); err == nil && info.Size() == size {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	resp, err := client.Blob(dg)
	if err != nil {
		return fmt.Errorf("fetching blob %s: %w", dg, err)
	}
	defer resp.Body.Close()

	tmp := dst + ".tmp"
	fd, err := os.Create(tmp)
	if err != nil {
		return err
	}

	total := resp.ContentLength
	var written int64
	buf := make([]byte, 1024*1024)

	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := fd.Write(buf[:n]); werr != nil {
				fd.Close()
				os.Remove(tmp)
				return werr
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			fd.Close()
			os.Remove(tmp)
			return rerr
		}
	}

	if err := fd.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dst)
}

func readJSON(path string, out any) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()
	dec := json.NewDecoder(fd)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')

	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Pull resolves imageRef's manifest for the given platform, downloads every
// layer blob, and caches both the index and the selected manifest on disk.
func (d *Downloader) Pull(domain, image, tag, os_, arch string, progress ProgressFunc) (Manifest, error) {
	client, err := New(d.HTTP, domain, image)
	if err != nil {
		return Manifest{}, fmt.Errorf("authenticating to %s: %w", domain, err)
	}

	indexPath := d.manifestPath(image + "-" + tag)
	idx, err := client.FetchIndex(tag)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetching index for %s:%s: %w", image, tag, err)
	}

	dg, err := idx.Select(os_, arch)
	if err != nil {
		return Manifest{}, err
	}

	manifestCache := d.LayerPath(dg) + ".json"
	if _, statErr := os.Stat(manifestCache); statErr == nil {
		var cached Manifest
		if err := readJSON(manifestCache, &cached); err == nil {
			return cached, nil
		}
	}

	manifest, err := client.FetchManifest(dg)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetching manifest %s: %w", dg, err)
	}

	if err := writeJSON(manifestCache, manifest); err != nil {
		return Manifest{}, err
	}

	for _, layer := range manifest.Layers {
		if err := d.DownloadBlob(client, layer.Digest, layer.Size, progress); err != nil {
			return Manifest{}, fmt.Errorf("downloading layer %s: %w", layer.Digest, err)
		}
	}

	if err := writeJSON(indexPath, idx); err != nil {
		return Manifest{}, err
	}

	return manifest, nil
}
