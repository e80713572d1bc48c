// Package salvage recovers hand-written methods from a previously generated
// model file so regeneration keeps them.
package salvage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cmmoran/modelgen/internal/model"
)

var (
	ErrSyntax        = errors.New("php syntax")
	ErrClassNotFound = errors.New("class not found")
	ErrNamespace     = errors.New("namespace mismatch")
)

// Result holds the methods carried over from an existing file.
// A nil *Result behaves like an empty one.
type Result struct {
	Path    string
	Methods []model.PreservedMethod
}

func (r *Result) Preserved() []model.PreservedMethod {
	if r == nil {
		return nil
	}
	return r.Methods
}

// Method looks name up the way PHP does, ignoring case.
func (r *Result) Method(name string) (model.PreservedMethod, bool) {
	for _, m := range r.Preserved() {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return model.PreservedMethod{}, false
}

// Validated reports whether a hand-written validation() survived.
func (r *Result) Validated() bool {
	_, ok := r.Method("validation")
	return ok
}

// File reads path and salvages the methods of namespace\className that are
// not in reserved. Names are compared ignoring case.
func File(path, className, namespace string, reserved map[string]bool) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := Source(string(src), className, namespace, reserved)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.Path = path
	return r, nil
}

// Source salvages from PHP source text. Methods keep their source order and
// their lines are copied verbatim.
func Source(src, className, namespace string, reserved map[string]bool) (*Result, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	c, err := findClass(toks, className)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(c.namespace, strings.Trim(namespace, `\`)) {
		return nil, fmt.Errorf("%w: found %s in %q, want %q", ErrNamespace, c.name, c.namespace, namespace)
	}

	skip := make(map[string]bool, len(reserved))
	for name, ok := range reserved {
		if ok {
			skip[strings.ToLower(name)] = true
		}
	}

	lines := strings.SplitAfter(src, "\n")
	r := &Result{}
	for _, m := range c.methods {
		key := strings.ToLower(m.name)
		if skip[key] {
			continue
		}
		skip[key] = true
		text := strings.Join(lines[m.start-1:m.end], "")
		r.Methods = append(r.Methods, model.PreservedMethod{
			Name:      m.name,
			Source:    strings.TrimRight(text, "\r\n"),
			StartLine: m.start,
			EndLine:   m.end,
		})
	}
	slog.Debug("salvaged methods", "class", c.name, "found", len(c.methods), "kept", len(r.Methods))
	return r, nil
}
