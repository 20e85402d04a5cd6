package keyenv

import (
	"strings"
	"time"
)

// EnvPair is one KEY=value entry for env-file rendering.
type EnvPair struct {
	Key   string
	Value string
}

// RenderEnvFile renders pairs as POSIX-shell-compatible .env text in the
// order given:
//
//	# Generated by KeyEnv
//	# Environment: production
//	# Generated at: 2026-08-25T12:00:00Z
//
//	DATABASE_URL=postgres://localhost/app
//	GREETING="hello world"
//
// Values containing a newline, double quote, single quote, or space are
// double-quoted with backslash and double-quote escaped; everything else
// is emitted verbatim. The output always ends in exactly one trailing
// newline, even for zero pairs.
func RenderEnvFile(environment string, pairs []EnvPair) string {
	return renderEnvFile(environment, pairs, time.Now())
}

func renderEnvFile(environment string, pairs []EnvPair, now time.Time) string {
	lines := make([]string, 0, len(pairs)+4)
	lines = append(lines,
		"# Generated by KeyEnv",
		"# Environment: "+environment,
		"# Generated at: "+now.UTC().Format(time.RFC3339),
		"",
	)
	for _, p := range pairs {
		lines = append(lines, formatEnvLine(p.Key, p.Value))
	}
	return strings.Join(lines, "\n") + "\n"
}

// formatEnvLine quotes only when the value would break shell parsing.
// Backslashes are escaped before double quotes so the escapes introduced
// for quotes are not themselves re-escaped.
func formatEnvLine(key, value string) string {
	if !strings.ContainsAny(value, "\n\"' ") {
		return key + "=" + value
	}
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return key + `="` + escaped + `"`
}
