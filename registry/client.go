package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/raptorforge/raptor/authchallenge"
	"github.com/raptorforge/raptor/digest"
)

// tokenProvider names the realm/service pair a well-known registry expects
// its bearer tokens fetched from, letting the client skip the initial
// unauthenticated round trip that would otherwise be needed to discover
// them from a 401's WWW-Authenticate header.
type tokenProvider struct {
	realm   string
	service string
}

// tokenProviders is a fast path for registries whose auth realm is already
// known. Any other registry is handled generically via the 401 challenge.
var tokenProviders = map[string]tokenProvider{
	"index.docker.io": {realm: "https://auth.docker.io/token", service: "registry.docker.io"},
	"ghcr.io":          {realm: "https://ghcr.io/token", service: "ghcr.io"},
}

// Client talks to one registry domain on behalf of one image repository.
type Client struct {
	http   *http.Client
	domain string
	image  string
	token  string
}

// ErrRegistry wraps a non-2xx HTTP response from the registry.
type ErrRegistry struct {
	URL    string
	Status int
}

func (e *ErrRegistry) Error() string {
	return fmt.Sprintf("registry request to %s failed: status %d", e.URL, e.Status)
}

// New creates a Client for the given domain and "<namespace>/<repo>" image
// path, performing the bearer-token handshake described in spec.md §4.2/§4.3.
func New(httpClient *http.Client, domain, image string) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{http: httpClient, domain: domain, image: image}

	token, err := c.fetchToken()
	if err != nil {
		return nil, err
	}
	c.token = token

	return c, nil
}

// fetchToken obtains a bearer token, using the known-provider fast path
// when available and otherwise discovering the realm/service from a probe
// request's 401 WWW-Authenticate challenge.
func (c *Client) fetchToken() (string, error) {
	if tp, ok := tokenProviders[c.domain]; ok {
		return c.requestToken(tp.realm, tp.service, "repository:"+c.image+":pull")
	}

	probeURL := c.apiURL("tags/list")
	req, err := http.NewRequest(http.MethodGet, probeURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		// Registry doesn't require auth for this image.
		return "", nil
	}

	header := resp.Header.Get("WWW-Authenticate")
	if header == "" {
		return "", fmt.Errorf("registry %s: 401 without WWW-Authenticate", c.domain)
	}

	challenges, err := authchallenge.Parse(header)
	if err != nil {
		return "", fmt.Errorf("registry %s: parsing WWW-Authenticate: %w", c.domain, err)
	}

	bearer, ok := challenges["Bearer"]
	if !ok {
		return "", fmt.Errorf("registry %s: no Bearer challenge in %q", c.domain, header)
	}

	realm, ok := bearer["realm"]
	if !ok {
		return "", fmt.Errorf("registry %s: Bearer challenge missing realm", c.domain)
	}

	scope := bearer["scope"]
	if scope == "" {
		scope = "repository:" + c.image + ":pull"
	}

	return c.requestToken(realm, bearer["service"], scope)
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *Client) requestToken(realm, service, scope string) (string, error) {
	q := url.Values{}
	if service != "" {
		q.Set("service", service)
	}
	q.Set("scope", scope)

	tokenURL := realm + "?" + q.Encode()

	resp, err := c.http.Get(tokenURL)
	if err != nil {
		return "", fmt.Errorf("fetching token from %s: %w", realm, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ErrRegistry{URL: tokenURL, Status: resp.StatusCode}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}

	return tr.Token, nil
}

func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("https://%s/v2/%s/%s", c.domain, c.image, path)
}

func (c *Client) get(reqURL, accept string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &ErrRegistry{URL: reqURL, Status: resp.StatusCode}
	}

	return resp, nil
}

func (c *Client) getJSON(reqURL, accept string, out any) error {
	resp, err := c.get(reqURL, accept)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// Tags lists the repository's available tags.
func (c *Client) Tags() (TagsList, error) {
	var out TagsList
	err := c.getJSON(c.apiURL("tags/list"), MediaTypeOCIManifest, &out)
	return out, err
}

// FetchIndex fetches a multi-platform image index for the given reference
// (tag or digest).
func (c *Client) FetchIndex(reference string) (Index, error) {
	var out Index
	err := c.getJSON(c.apiURL("manifests/"+reference), AcceptHeader, &out)
	return out, err
}

// FetchManifest fetches a single-platform manifest by digest.
func (c *Client) FetchManifest(d digest.Digest) (Manifest, error) {
	var out Manifest
	err := c.getJSON(c.apiURL("manifests/"+d.String()), MediaTypeOCIManifest, &out)
	return out, err
}

// Blob opens a streaming response body for the given blob digest. The
// caller owns the returned body and must close it.
func (c *Client) Blob(d digest.Digest) (*http.Response, error) {
	return c.get(c.apiURL("blobs/"+d.String()), "")
}
