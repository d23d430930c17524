// Package recipe implements the build recipe DSL: grammar, AST, and the
// parser that turns recipe source into a list of Statements.
package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raptorforge/raptor/module"
)

// MaxIncludeDepth bounds how many INCLUDE statements the template loader
// will follow transitively before giving up, guarding against an
// INCLUDE cycle silently hanging a build (spec.md §4.6).
const MaxIncludeDepth = 20

// ErrParseRecipe reports a malformed instruction, with the Origin of the
// offending line.
type ErrParseRecipe struct {
	Origin Origin
	Reason string
}

func (e *ErrParseRecipe) Error() string {
	return fmt.Sprintf("%s: %s", e.Origin, e.Reason)
}

// Parse parses recipe source into a list of Statements. path is recorded
// in each Statement's Origin for diagnostics.
func Parse(path, src string) ([]Statement, error) {
	logical, err := joinContinuations(src)
	if err != nil {
		return nil, err
	}

	var stmts []Statement
	for _, l := range logical {
		trimmed := strings.TrimSpace(l.text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		origin := Origin{Path: path, Start: l.start, End: l.end}

		words, err := tokenizeLine(trimmed)
		if err != nil {
			return nil, &ErrParseRecipe{Origin: origin, Reason: err.Error()}
		}
		if len(words) == 0 {
			continue
		}

		inst, err := parseInstruction(words, origin)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, Statement{Inst: inst, Origin: origin})
	}

	return stmts, nil
}

type logicalLine struct {
	text       string
	start, end int
}

// joinContinuations folds a backslash-terminated physical line into the
// next one, the way shell scripts and Dockerfiles do.
func joinContinuations(src string) ([]logicalLine, error) {
	var out []logicalLine
	pos := 0

	var pending strings.Builder
	pendingStart := -1

	flush := func(end int) {
		if pendingStart < 0 {
			return
		}
		out = append(out, logicalLine{text: pending.String(), start: pendingStart, end: end})
		pending.Reset()
		pendingStart = -1
	}

	lines := strings.Split(src, "\n")
	for _, raw := range lines {
		lineStart := pos
		pos += len(raw) + 1 // account for the '\n' this Split ate

		if pendingStart < 0 {
			pendingStart = lineStart
		}

		if strings.HasSuffix(raw, "\\") {
			pending.WriteString(strings.TrimSuffix(raw, "\\"))
			continue
		}

		pending.WriteString(raw)
		flush(pos - 1)
	}
	flush(pos)

	return out, nil
}

func parseInstruction(words []word, origin Origin) (Instruction, error) {
	kw := words[0].text
	args := words[1:]

	switch kw {
	case "FROM":
		return parseFrom(args, origin)
	case "MOUNT":
		return parseMount(args, origin)
	case "COPY":
		return parseCopy(args, origin)
	case "RENDER":
		return parseRender(args, origin)
	case "WRITE":
		return parseWrite(args, origin)
	case "MKDIR":
		return parseMkdir(args, origin)
	case "INCLUDE":
		return parseInclude(args, origin)
	case "RUN":
		return parseRun(args, origin)
	case "ENV":
		return parseEnv(args, origin)
	case "WORKDIR":
		return parseWorkdir(args, origin)
	case "ENTRYPOINT":
		return InstEntrypoint{Entrypoint: wordsText(args)}, nil
	case "CMD":
		return InstCmd{Cmd: wordsText(args)}, nil
	default:
		return nil, &ErrParseRecipe{Origin: origin, Reason: fmt.Sprintf("unknown instruction %q", kw)}
	}
}

func wordsText(ws []word) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.text
	}
	return out
}

func parseFrom(args []word, origin Origin) (Instruction, error) {
	if len(args) != 1 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "FROM takes exactly one argument"}
	}
	src := args[0].text
	if rest, ok := strings.CutPrefix(src, "docker://"); ok {
		return InstFrom{From: FromSource{Docker: rest}}, nil
	}
	name := module.Parse(src)
	return InstFrom{From: FromSource{Recipe: &name}}, nil
}

func parseMount(args []word, origin Origin) (Instruction, error) {
	if len(args) != 3 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "MOUNT takes a mode flag, a source and a destination"}
	}
	var mode MountMode
	switch args[0].text {
	case "--simple":
		mode = MountSimple
	case "--layers":
		mode = MountLayers
	case "--overlay":
		mode = MountOverlay
	default:
		return nil, &ErrParseRecipe{Origin: origin, Reason: fmt.Sprintf("unknown MOUNT mode %q", args[0].text)}
	}
	return InstMount{Mode: mode, Source: args[1].text, Dest: args[2].text}, nil
}

// fileOptions consumes leading --chmod/--chown/--parents flags, returning
// the index of the first non-flag argument.
type fileOptions struct {
	chmod   *uint16
	chown   *Chown
	parents bool
}

func parseFileOptions(args []word, origin Origin) (fileOptions, int, error) {
	var opts fileOptions
	i := 0
	for i < len(args) {
		switch args[i].text {
		case "--chmod":
			if i+1 >= len(args) {
				return opts, i, &ErrParseRecipe{Origin: origin, Reason: "--chmod requires a value"}
			}
			v, err := strconv.ParseUint(args[i+1].text, 8, 16)
			if err != nil {
				return opts, i, &ErrParseRecipe{Origin: origin, Reason: "invalid --chmod value: " + err.Error()}
			}
			mode := uint16(v)
			opts.chmod = &mode
			i += 2
		case "--chown":
			if i+1 >= len(args) {
				return opts, i, &ErrParseRecipe{Origin: origin, Reason: "--chown requires a value"}
			}
			c := ParseChown(args[i+1].text)
			opts.chown = &c
			i += 2
		case "--parents":
			opts.parents = true
			i++
		default:
			return opts, i, nil
		}
	}
	return opts, i, nil
}

func parseCopy(args []word, origin Origin) (Instruction, error) {
	opts, idx, err := parseFileOptions(args, origin)
	if err != nil {
		return nil, err
	}
	rest := args[idx:]
	if len(rest) < 2 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "COPY requires at least one source and a destination"}
	}
	texts := wordsText(rest)
	dest := texts[len(texts)-1]
	srcs := texts[:len(texts)-1]
	return InstCopy{Srcs: srcs, Dest: dest, Chmod: opts.chmod, Chown: opts.chown}, nil
}

func parseRender(args []word, origin Origin) (Instruction, error) {
	opts, idx, err := parseFileOptions(args, origin)
	if err != nil {
		return nil, err
	}
	rest := args[idx:]
	if len(rest) < 2 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "RENDER requires a source and a destination"}
	}
	includeArgs, err := parseIncludeArgs(rest[2:], origin)
	if err != nil {
		return nil, err
	}
	return InstRender{
		Src:   rest[0].text,
		Dest:  rest[1].text,
		Chmod: opts.chmod,
		Chown: opts.chown,
		Args:  includeArgs,
	}, nil
}

func parseWrite(args []word, origin Origin) (Instruction, error) {
	opts, idx, err := parseFileOptions(args, origin)
	if err != nil {
		return nil, err
	}
	rest := args[idx:]
	if len(rest) != 2 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "WRITE requires a destination and a quoted body"}
	}
	return InstWrite{Dest: rest[0].text, Body: rest[1].text, Chmod: opts.chmod, Chown: opts.chown}, nil
}

func parseMkdir(args []word, origin Origin) (Instruction, error) {
	opts, idx, err := parseFileOptions(args, origin)
	if err != nil {
		return nil, err
	}
	rest := args[idx:]
	if len(rest) != 1 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "MKDIR requires exactly one destination"}
	}
	return InstMkdir{Dest: rest[0].text, Chmod: opts.chmod, Chown: opts.chown, Parents: opts.parents}, nil
}

func parseInclude(args []word, origin Origin) (Instruction, error) {
	if len(args) < 1 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "INCLUDE requires a source module"}
	}
	includeArgs, err := parseIncludeArgs(args[1:], origin)
	if err != nil {
		return nil, err
	}
	return InstInclude{Src: module.Parse(args[0].text), Args: includeArgs}, nil
}

func parseIncludeArgs(args []word, origin Origin) ([]IncludeArg, error) {
	out := make([]IncludeArg, 0, len(args))
	for _, a := range args {
		name, valueText, ok := strings.Cut(a.text, "=")
		if !ok {
			return nil, &ErrParseRecipe{Origin: origin, Reason: fmt.Sprintf("expected name=value argument, got %q", a.text)}
		}

		var val IncludeArgValue
		switch {
		case a.quoted:
			v := StringValue(valueText)
			val = IncludeArgValue{Value: &v}
		case valueText == "true":
			v := BoolValue(true)
			val = IncludeArgValue{Value: &v}
		case valueText == "false":
			v := BoolValue(false)
			val = IncludeArgValue{Value: &v}
		default:
			if n, err := strconv.ParseInt(valueText, 10, 64); err == nil {
				v := IntValue(n)
				val = IncludeArgValue{Value: &v}
			} else {
				lk := Lookup{Path: strings.Split(valueText, ".")}
				val = IncludeArgValue{Lookup: &lk}
			}
		}

		out = append(out, IncludeArg{Name: name, Value: val})
	}
	return out, nil
}

func parseRun(args []word, origin Origin) (Instruction, error) {
	if len(args) == 0 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "RUN requires at least one argument"}
	}
	return InstRun{Run: wordsText(args)}, nil
}

func parseEnv(args []word, origin Origin) (Instruction, error) {
	if len(args) == 0 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "ENV requires at least one key=value pair"}
	}
	assigns := make([]InstEnvAssign, 0, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a.text, "=")
		if !ok {
			return nil, &ErrParseRecipe{Origin: origin, Reason: fmt.Sprintf("expected key=value, got %q", a.text)}
		}
		assigns = append(assigns, InstEnvAssign{Key: key, Value: value})
	}
	return InstEnv{Env: assigns}, nil
}

func parseWorkdir(args []word, origin Origin) (Instruction, error) {
	if len(args) != 1 {
		return nil, &ErrParseRecipe{Origin: origin, Reason: "WORKDIR takes exactly one argument"}
	}
	return InstWorkdir{Dir: args[0].text}, nil
}
