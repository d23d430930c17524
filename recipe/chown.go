package recipe

import "strings"

// Chown is a COPY/WRITE/RENDER/MKDIR "--chown" value: a user, a group, or
// both.
type Chown struct {
	User  string // empty when not set
	Group string // empty when not set
}

func (c Chown) String() string {
	var b strings.Builder
	b.WriteString(c.User)
	if c.Group != "" {
		b.WriteByte(':')
		b.WriteString(c.Group)
	}
	return b.String()
}

// ParseChown parses a "--chown" argument of the form "user", "user:group"
// or ":group".
func ParseChown(s string) Chown {
	user, group, found := strings.Cut(s, ":")
	if !found {
		return Chown{User: user}
	}
	return Chown{User: user, Group: group}
}
