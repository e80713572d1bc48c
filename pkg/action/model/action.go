package model

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/cmmoran/modelgen/internal/generator"
	"github.com/cmmoran/modelgen/internal/salvage"
	"github.com/cmmoran/modelgen/internal/schema"
	"github.com/cmmoran/modelgen/pkg/builder"
)

// Generate builds the model class for opts.Name and writes it into the
// models directory. It returns the path written.
func Generate(ctx context.Context, opts *builder.Options) (string, error) {
	return Run(ctx, opts, schema.Open)
}

// Run is Generate with the database connection supplied by open.
func Run(ctx context.Context, opts *builder.Options, open schema.Opener) (string, error) {
	req, err := generator.Resolve(opts)
	if err != nil {
		return "", err
	}
	l := slog.With("table", req.Table, "file", req.OutputPath)

	exists, err := fileExists(req.OutputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", builder.ErrIO, err)
	}
	if exists && !req.Force {
		return "", fmt.Errorf("%w: the model file %q already exists in the models directory", builder.ErrConflict, req.ClassName+".php")
	}

	insp, err := open(ctx, req.Database)
	if err != nil {
		return "", fmt.Errorf("%w: %w", builder.ErrConfiguration, err)
	}
	defer func() {
		if cerr := insp.Close(); cerr != nil {
			l.With("error", cerr).Warn("closing database connection")
		}
	}()

	found, err := insp.TableExists(ctx, req.Table, req.Schema)
	if err != nil {
		return "", fmt.Errorf("%w: %w", builder.ErrSchema, err)
	}
	if !found {
		return "", fmt.Errorf("%w: table %q does not exist", builder.ErrSchema, req.Table)
	}
	columns, err := insp.DescribeColumns(ctx, req.Table, req.Schema)
	if err != nil {
		return "", fmt.Errorf("%w: describe %s: %w", builder.ErrSchema, req.Table, err)
	}
	l.With("columns", len(columns)).Debug("inspected table")

	gen := generator.New(req, columns)

	var salvaged *salvage.Result
	if exists {
		salvaged, err = salvage.File(req.OutputPath, req.ClassName, req.Namespace, gen.ReservedMethods())
		if err != nil {
			// the existing file is overwritten as if it held no custom code
			l.With("error", err).Debug("nothing salvaged from existing model")
			salvaged = nil
		} else {
			l.With("methods", len(salvaged.Preserved()), "validation", salvaged.Validated()).Debug("salvaged existing model")
		}
	}

	out, err := gen.Build(salvaged)
	if err != nil {
		return "", err
	}
	src, err := generator.Source(req, out)
	if err != nil {
		return "", err
	}
	if err = generator.WriteFile(req.OutputPath, src); err != nil {
		return "", err
	}
	l.Info("model written")
	return req.OutputPath, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
