package compiler

import (
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/exp-lang/exp/internal/analysis"
	"github.com/exp-lang/exp/internal/backend/isa/amd64"
	"github.com/exp-lang/exp/internal/frontend"
	"github.com/exp-lang/exp/internal/ssa"
	"github.com/exp-lang/exp/internal/version"
)

// Compile runs the pipeline for ctx.SourcePath as far as the options
// ask, recording the first failure on the context and returning it.
func Compile(ctx *Context) error {
	if err := compile(ctx); err != nil {
		ctx.SetError(err)
		return err
	}
	return nil
}

func compile(ctx *Context) error {
	source, err := os.ReadFile(ctx.SourcePath)
	if err != nil {
		return errors.Wrap(err, "reading source")
	}

	if err := frontend.Parse(ctx.Module, string(source)); err != nil {
		return errors.Wrapf(err, "%s", ctx.SourcePath)
	}

	if err := analyze(ctx.Module); err != nil {
		return errors.Wrapf(err, "%s", ctx.SourcePath)
	}

	if ctx.Options.Has(EmitIRAssembly) {
		logrus.WithField("path", ctx.IRPath()).Debug("emitting ir")
		return errors.Wrap(os.WriteFile(ctx.IRPath(), []byte(ctx.Module.Format()), 0o644), "writing ir")
	}

	text, err := amd64.Emit(ctx.Module, ctx.AssemblyPath(), version.String())
	if err != nil {
		return errors.Wrapf(err, "%s", ctx.SourcePath)
	}
	logrus.WithField("path", ctx.AssemblyPath()).Debug("emitting assembly")
	if err := os.WriteFile(ctx.AssemblyPath(), []byte(text), 0o644); err != nil {
		return errors.Wrap(err, "writing assembly")
	}
	if ctx.Options.Has(EmitX8664Assembly) {
		return nil
	}

	if err := assemble(ctx); err != nil {
		return err
	}
	if ctx.Options.Has(CleanupAssembly) {
		if err := os.Remove(ctx.AssemblyPath()); err != nil {
			return errors.Wrap(err, "removing assembly")
		}
	}
	if ctx.Options.Has(CreateELFObject) {
		return nil
	}

	if err := link(ctx); err != nil {
		return err
	}
	if ctx.Options.Has(CleanupObject) {
		if err := os.Remove(ctx.ObjectPath()); err != nil {
			return errors.Wrap(err, "removing object")
		}
	}
	return nil
}

// analyze runs inference, lifetime analysis, and validation over every
// function in declaration order, so a callee declared before its caller
// is typed by the time the caller is checked; a call to a function
// declared later fails as an undefined symbol.
func analyze(m *ssa.Module) error {
	var failure error
	m.RangeDeclared(func(sym *ssa.Symbol) {
		if failure != nil || sym.Kind != ssa.SymbolKindFunction {
			return
		}
		name := m.Strings.Get(sym.Name)
		fn := sym.Body

		if err := analysis.InferTypes(fn, m); err != nil {
			failure = errors.Wrapf(err, "%s", name)
			return
		}
		sym.Type = m.Types.Function(fn.ReturnType, lo.Map(fn.Arguments, func(ssaIdx uint32, _ int) *ssa.Type {
			return fn.LocalAt(ssaIdx).Type
		}))

		analysis.AnalyzeLifetimes(fn, m)

		if err := analysis.Validate(fn, m); err != nil {
			failure = errors.Wrapf(err, "%s", name)
		}
	})
	return failure
}
