// Package reference parses and prints Docker/OCI image coordinates of the
// form "[host[:port]/][namespace/]repository[:tag|@digest]".
package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raptorforge/raptor/digest"
)

// DefaultNamespace is substituted when a reference has no namespace and one
// is needed to address the registry (spec.md §3: "default `library` when
// fetching").
const DefaultNamespace = "library"

// DefaultTag is substituted when a reference has neither tag nor digest.
const DefaultTag = "latest"

// Reference is a parsed image coordinate. The printed form reconstructs the
// parsed input exactly (parse(print(r)) == r for every syntactically valid
// reference).
type Reference struct {
	Host       *string
	Port       *uint16
	Namespace  *string
	Repository string
	Tag        *string
	Digest     *digest.Digest
}

// ErrInvalidReference is returned for any syntactically malformed reference.
type ErrInvalidReference struct {
	Value  string
	Reason string
}

func (e *ErrInvalidReference) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Value, e.Reason)
}

func invalid(value, reason string) error {
	return &ErrInvalidReference{Value: value, Reason: reason}
}

// Parse parses an image reference string.
func Parse(s string) (Reference, error) {
	if s == "" {
		return Reference{}, invalid(s, "empty reference")
	}

	var head, tail string
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		head, tail = s[:idx], s[idx+1:]
	} else {
		tail = s
	}

	var repo, tagStr, digestStr string
	hasTag, hasDigest := false, false

	if idx := strings.Index(tail, "@"); idx >= 0 {
		repo, digestStr = tail[:idx], tail[idx+1:]
		hasDigest = true
	} else if idx := strings.Index(tail, ":"); idx >= 0 {
		repo, tagStr = tail[:idx], tail[idx+1:]
		hasTag = true
	} else {
		repo = tail
	}

	if repo == "" {
		return Reference{}, invalid(s, "missing repository component")
	}

	ref := Reference{Repository: repo}

	if hasDigest {
		dg, err := digest.Parse(digestStr)
		if err != nil {
			return Reference{}, invalid(s, "bad digest: "+err.Error())
		}
		ref.Digest = &dg
	}
	if hasTag {
		if tagStr == "" {
			return Reference{}, invalid(s, "empty tag")
		}
		ref.Tag = &tagStr
	}

	if head != "" {
		var firstSeg, rest string
		if idx := strings.Index(head, "/"); idx >= 0 {
			firstSeg, rest = head[:idx], head[idx+1:]
		} else {
			firstSeg = head
		}

		if h, p, ok := strings.Cut(firstSeg, ":"); ok {
			portNum, err := strconv.ParseUint(p, 10, 16)
			if err != nil {
				return Reference{}, invalid(s, "bad port: "+err.Error())
			}
			port := uint16(portNum)
			ref.Host = &h
			ref.Port = &port
			if rest != "" {
				ref.Namespace = &rest
			}
		} else if strings.Contains(firstSeg, ".") {
			host := firstSeg
			ref.Host = &host
			if rest != "" {
				ref.Namespace = &rest
			}
		} else {
			ns := head
			ref.Namespace = &ns
		}
	}

	return ref, nil
}

// String reconstructs the canonical form, identical to the parsed input for
// every syntactically valid reference.
func (r Reference) String() string {
	var b strings.Builder

	if r.Host != nil {
		b.WriteString(*r.Host)
	}
	if r.Port != nil {
		fmt.Fprintf(&b, ":%d", *r.Port)
	}
	if r.Host != nil {
		b.WriteByte('/')
	}
	if r.Namespace != nil {
		b.WriteString(*r.Namespace)
		b.WriteByte('/')
	}
	b.WriteString(r.Repository)
	if r.Tag != nil {
		b.WriteByte(':')
		b.WriteString(*r.Tag)
	}
	if r.Digest != nil {
		b.WriteByte('@')
		b.WriteString(r.Digest.String())
	}

	return b.String()
}

// EffectiveNamespace returns the namespace to use when addressing the
// registry, substituting DefaultNamespace when none was given.
func (r Reference) EffectiveNamespace() string {
	if r.Namespace != nil {
		return *r.Namespace
	}
	return DefaultNamespace
}

// EffectiveTag returns the tag to request, substituting DefaultTag when
// neither a tag nor a digest was given.
func (r Reference) EffectiveTag() string {
	if r.Tag != nil {
		return *r.Tag
	}
	if r.Digest != nil {
		return r.Digest.String()
	}
	return DefaultTag
}

// ImagePath returns "<namespace>/<repository>", the path segment used to
// address the v2 registry API.
func (r Reference) ImagePath() string {
	return r.EffectiveNamespace() + "/" + r.Repository
}

// Domain returns the registry host to contact, defaulting to Docker Hub's
// index when no host was given.
func (r Reference) Domain() string {
	if r.Host != nil {
		if r.Port != nil {
			return fmt.Sprintf("%s:%d", *r.Host, *r.Port)
		}
		return *r.Host
	}
	return "index.docker.io"
}
