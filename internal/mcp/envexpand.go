package mcp

import (
	"os"
	"regexp"
)

// varPattern matches ${VAR} and ${VAR:-default}; default may itself
// contain another ${...} reference, which is why Expand re-scans until a
// pass makes no further substitutions rather than doing a single regex
// pass like the teacher's MCP server config loading does.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// maxExpandPasses bounds recursive expansion so a pathological
// self-referential default (${A:-${A}}) can't loop forever.
const maxExpandPasses = 10

// lookupEnv is indirected for testability, matching internal/config's
// osUserHomeDir seam pattern.
var lookupEnv = os.LookupEnv

// Expand resolves ${VAR} and ${VAR:-default} references in s against the
// process environment, recursively — a default value may itself contain
// a reference, which the teacher's own non-recursive MCP config expansion
// does not support.
func Expand(s string) string {
	for i := 0; i < maxExpandPasses; i++ {
		expanded := varPattern.ReplaceAllStringFunc(s, func(match string) string {
			groups := varPattern.FindStringSubmatch(match)
			name, hasDefault, def := groups[1], groups[2] != "", groups[3]
			if v, ok := lookupEnv(name); ok {
				return v
			}
			if hasDefault {
				return def
			}
			return ""
		})
		if expanded == s {
			return expanded
		}
		s = expanded
	}
	return s
}

// ExpandServerConfig returns a copy of cfg with Command, Args, Env values,
// URL, and Headers all passed through Expand.
func ExpandServerConfig(cfg ServerConfig) ServerConfig {
	out := cfg
	out.Command = Expand(cfg.Command)

	if cfg.Args != nil {
		out.Args = make([]string, len(cfg.Args))
		for i, a := range cfg.Args {
			out.Args[i] = Expand(a)
		}
	}
	if cfg.Env != nil {
		out.Env = make(map[string]string, len(cfg.Env))
		for k, v := range cfg.Env {
			out.Env[k] = Expand(v)
		}
	}
	out.URL = Expand(cfg.URL)
	if cfg.Headers != nil {
		out.Headers = make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			out.Headers[k] = Expand(v)
		}
	}
	return out
}
