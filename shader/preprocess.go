// Package shader loads combined vertex+fragment shader sources in the
// RetroArch "single file, compiled twice" convention: one GLSL file guarded by
// VERTEX/FRAGMENT macros, optionally carrying #pragma parameter declarations
// for tweakable float uniforms.
package shader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Parameter is one "#pragma parameter <name> \"<desc>\" <default> ..." entry.
// Only the name and the default value matter to the engine; min/max/step are
// slider hints for frontends and are discarded.
type Parameter struct {
	Name    string
	Default float32
}

// Source holds the two compilable stage variants produced from one combined
// shader file.
type Source struct {
	Path       string
	Vertex     string
	Fragment   string
	Parameters []Parameter
}

const (
	defaultVersionLine = "#version 110\n"
	pragmaParameter    = "#pragma parameter"
)

// Load reads and preprocesses a combined shader file.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	src := Parse(string(data))
	src.Path = path
	return src, nil
}

// Parse preprocesses combined shader source text: it strips a UTF-8 BOM,
// extracts #pragma parameter declarations, splits off the #version line and
// produces the vertex and fragment stage variants with their defining macros
// injected after the version line.
func Parse(text string) *Source {
	text = strings.TrimPrefix(text, "\xef\xbb\xbf")

	src := &Source{}
	lines := strings.Split(text, "\n")
	body := make([]string, 0, len(lines))
	for _, line := range lines {
		if name, value, ok := parseParameterPragma(line); ok {
			src.Parameters = setParameter(src.Parameters, name, value)
			continue
		}
		// Pragma parameter lines never reach the compiler, even malformed
		// ones; everything else is preserved verbatim.
		if strings.HasPrefix(strings.TrimSpace(line), pragmaParameter) {
			continue
		}
		body = append(body, line)
	}

	prefix, remainder := splitVersion(body)

	vertex := prefix + "#define PARAMETER_UNIFORM 1\n#define VERTEX 1\n" + remainder
	fragment := prefix + "#define PARAMETER_UNIFORM 1\n#define FRAGMENT 1\n" + remainder
	src.Vertex = vertex
	src.Fragment = fragment
	return src
}

// parseParameterPragma extracts (name, default) from a pragma parameter line.
// Declarations without a parsable default are rejected so the caller can skip
// them without aborting the whole file.
func parseParameterPragma(line string) (string, float32, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, pragmaParameter) {
		return "", 0, false
	}
	rest := strings.TrimSpace(s[len(pragmaParameter):])
	if rest == "" {
		return "", 0, false
	}

	fields := strings.Fields(rest)
	name := fields[0]

	// The description is a quoted string that may contain spaces; the default
	// is the first token after its closing quote.
	open := strings.Index(rest, `"`)
	if open < 0 {
		return "", 0, false
	}
	closing := strings.Index(rest[open+1:], `"`)
	if closing < 0 {
		return "", 0, false
	}
	after := strings.Fields(rest[open+1+closing+1:])
	if len(after) == 0 {
		return "", 0, false
	}
	value, err := strconv.ParseFloat(after[0], 32)
	if err != nil {
		return "", 0, false
	}
	return name, float32(value), true
}

// setParameter records a parameter, letting the last occurrence of a name win.
func setParameter(params []Parameter, name string, value float32) []Parameter {
	for i := range params {
		if params[i].Name == name {
			params[i].Default = value
			return params
		}
	}
	return append(params, Parameter{Name: name, Default: value})
}

// splitVersion finds a leading #version directive (the first content that is
// not whitespace or a comment) and returns it as the prefix, with everything
// after it as the remainder. Without one, a default version line is
// synthesized and the whole input becomes the remainder.
func splitVersion(lines []string) (prefix, remainder string) {
	inBlockComment := false
	for i, line := range lines {
		s := strings.TrimSpace(strings.ReplaceAll(line, "\r", " "))
		for inBlockComment {
			end := strings.Index(s, "*/")
			if end < 0 {
				s = ""
				break
			}
			s = strings.TrimSpace(s[end+2:])
			inBlockComment = false
		}
		for strings.HasPrefix(s, "/*") {
			end := strings.Index(s[2:], "*/")
			if end < 0 {
				inBlockComment = true
				s = ""
				break
			}
			s = strings.TrimSpace(s[2+end+2:])
		}
		if s == "" || strings.HasPrefix(s, "//") {
			continue
		}
		if strings.HasPrefix(s, "#version") {
			return line + "\n", strings.Join(lines[i+1:], "\n")
		}
		break
	}
	return defaultVersionLine, strings.Join(lines, "\n")
}
