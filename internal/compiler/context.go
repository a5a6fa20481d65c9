// Package compiler owns the per-process compilation context and drives
// the pipeline: parse, analyse, lower, emit, assemble, link.
package compiler

import (
	"path/filepath"
	"strings"

	"github.com/exp-lang/exp/internal/ssa"
)

// Context is the process-wide bundle every stage reads: the IR module,
// the option flags, the derived output paths, and the single
// current-error slot. Later writes to the error slot overwrite earlier
// ones; the pipeline stops at the first failure, so nothing is lost.
type Context struct {
	Module     *ssa.Module
	Options    Options
	SourcePath string
	OutputPath string

	currentError error
}

// NewContext derives the output path from the source path when none is
// given: the source path with its extension stripped.
func NewContext(sourcePath, outputPath string, options Options) *Context {
	if outputPath == "" {
		outputPath = strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	}
	return &Context{
		Module:     ssa.NewModule(),
		Options:    options,
		SourcePath: sourcePath,
		OutputPath: outputPath,
	}
}

// AssemblyPath is where the emitted assembly file goes.
func (c *Context) AssemblyPath() string { return c.OutputPath + ".s" }

// ObjectPath is where the assembled object goes.
func (c *Context) ObjectPath() string { return c.OutputPath + ".o" }

// IRPath is where the IR text form goes.
func (c *Context) IRPath() string { return c.OutputPath + ".ir" }

// SetError records the current error. The first error wins; the
// pipeline never runs a later stage after a failure.
func (c *Context) SetError(err error) {
	if c.currentError == nil {
		c.currentError = err
	}
}

// Err returns the current error.
func (c *Context) Err() error { return c.currentError }
