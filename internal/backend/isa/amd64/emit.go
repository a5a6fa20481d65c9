package amd64

import (
	"fmt"
	"strings"

	"github.com/exp-lang/exp/internal/ssa"
)

// The directive printers each write one GNU as line. Only the ELF
// symbol-type names the backend uses today are mapped; data directives
// are kept for global-data emission.

func directiveFile(b *strings.Builder, path string) {
	fmt.Fprintf(b, "\t.file \"%s\"\n", path)
}

func directiveArch(b *strings.Builder, cpuType string) {
	fmt.Fprintf(b, "\t.arch %s\n", cpuType)
}

func directiveIdent(b *strings.Builder, comment string) {
	fmt.Fprintf(b, "\t.ident \"%s\"\n", comment)
}

// directiveNoExecStack marks the stack non-executable; ELF targets
// only.
func directiveNoExecStack(b *strings.Builder) {
	b.WriteString("\t.section .note.GNU-stack,\"\",@progbits\n")
}

func directiveText(b *strings.Builder) {
	b.WriteString("\t.text\n")
}

func directiveData(b *strings.Builder) {
	b.WriteString("\t.data\n")
}

func directiveBss(b *strings.Builder) {
	b.WriteString("\t.bss\n")
}

func directiveGlobl(b *strings.Builder, name string) {
	fmt.Fprintf(b, "\t.globl %s\n", name)
}

func directiveBalign(b *strings.Builder, align uint64) {
	fmt.Fprintf(b, "\t.balign %d\n", align)
}

// SymbolType is the ELF symbol type given to the .type directive.
type SymbolType byte

const (
	SymbolTypeObject SymbolType = iota
	SymbolTypeFunction
	SymbolTypeTLS
	SymbolTypeCommon
)

func directiveType(b *strings.Builder, name string, st SymbolType) {
	var kind string
	switch st {
	case SymbolTypeObject:
		kind = "@object"
	case SymbolTypeFunction:
		kind = "@function"
	case SymbolTypeTLS:
		kind = "@tls_object"
	case SymbolTypeCommon:
		kind = "@common"
	default:
		panic(fmt.Sprintf("BUG: invalid symbol type %d", st))
	}
	fmt.Fprintf(b, "\t.type %s, %s\n", name, kind)
}

func directiveLabel(b *strings.Builder, name string) {
	fmt.Fprintf(b, "%s:\n", name)
}

// directiveSizeLabelRelative computes the symbol size as the distance
// from its label to the current address.
func directiveSizeLabelRelative(b *strings.Builder, name string) {
	fmt.Fprintf(b, "\t.size %s, .-%s\n", name, name)
}

func directiveQuad(b *strings.Builder, v int64) {
	fmt.Fprintf(b, "\t.quad %d\n", v)
}

func directiveByte(b *strings.Builder, v byte) {
	fmt.Fprintf(b, "\t.byte %d\n", v)
}

func directiveZero(b *strings.Builder, bytes uint64) {
	fmt.Fprintf(b, "\t.zero %d\n", bytes)
}

func directiveString(b *strings.Builder, s string) {
	fmt.Fprintf(b, "\t.string \"%s\"\n", s)
}

// AppendText writes the body as one .text symbol definition.
func (body *Body) AppendText(b *strings.Builder, name string, m *ssa.Module) {
	directiveText(b)
	directiveGlobl(b, name)
	directiveType(b, name, SymbolTypeFunction)
	directiveLabel(b, name)
	for _, instr := range body.bc.instrs {
		b.WriteByte('\t')
		b.WriteString(instr.format(m))
		b.WriteByte('\n')
	}
	directiveSizeLabelRelative(b, name)
}

// Emit compiles every function symbol in the module and renders the
// complete assembly file: file prologue, one definition per symbol,
// then the ident and GNU-stack epilogue.
func Emit(m *ssa.Module, assemblyPath, ident string) (string, error) {
	var b strings.Builder
	directiveFile(&b, assemblyPath)
	b.WriteByte('\n')

	var err error
	m.RangeDeclared(func(sym *ssa.Symbol) {
		if err != nil || sym.Kind != ssa.SymbolKindFunction {
			return
		}
		var body *Body
		body, err = Compile(m, sym.Body)
		if err != nil {
			return
		}
		body.AppendText(&b, m.Strings.Get(sym.Name), m)
		b.WriteByte('\n')
	})
	if err != nil {
		return "", err
	}

	directiveIdent(&b, ident)
	directiveNoExecStack(&b)
	return b.String(), nil
}
