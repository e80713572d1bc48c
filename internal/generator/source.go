package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmmoran/modelgen/pkg/builder"
)

// Source assembles the complete PHP file for req from the generated output.
func Source(req *Request, out *Output) (string, error) {
	var body strings.Builder
	for _, f := range out.Fragments {
		body.WriteString(f.Text)
	}
	return render("file", map[string]any{
		"License":    license(req.LicensePath),
		"Namespace":  req.Namespace,
		"Uses":       out.Uses,
		"Properties": out.Properties,
		"ClassName":  req.ClassName,
		"Extends":    req.Extends,
		"Body":       body.String(),
	})
}

// license reads the license side-channel file. A missing or unreadable file
// means no license header.
func license(path string) string {
	if path == "" {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.With("file", path, "error", err).Warn("ignoring unreadable license file")
		}
		return ""
	}
	return strings.TrimSpace(string(b))
}

// WriteFile replaces path with content through a temp file and a rename, so
// readers never observe a partially written model. A replaced file keeps its
// permissions; new files get 0644.
func WriteFile(path, content string) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", builder.ErrIO, dir, err)
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: unable to write to %s: %w", builder.ErrIO, path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.WriteString(content); err != nil {
		return fmt.Errorf("%w: unable to write to %s: %w", builder.ErrIO, path, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", builder.ErrIO, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: unable to write to %s: %w", builder.ErrIO, path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: unable to write to %s: %w", builder.ErrIO, path, err)
	}
	return nil
}
