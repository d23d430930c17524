package plan

import (
	"hash/fnv"
	"sort"
)

// hashRunTarget computes a Run job's own node key. The original hashes
// the parsed RunTarget struct directly (via a derived Hash impl); this
// hashes the same fields explicitly, sorting the Env map's keys first so
// the result doesn't depend on Go's randomized map iteration order.
func hashRunTarget(name string, rule RunTarget) uint64 {
	h := fnv.New64a()

	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write("run")
	write(name)
	write(rule.Target)
	write(rule.Output)
	write(rule.StateDir)

	for _, s := range rule.Cache {
		write(s)
	}
	for _, s := range rule.Input {
		write(s)
	}
	for _, s := range rule.Entrypoint {
		write(s)
	}
	for _, s := range rule.Args {
		write(s)
	}

	keys := make([]string, 0, len(rule.Env))
	for k := range rule.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k)
		write(rule.Env[k])
	}

	return h.Sum64()
}
