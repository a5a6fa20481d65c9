package compiler

// Options is the flag set the CLI surface maps onto.
type Options uint32

const (
	// EmitIRAssembly stops the pipeline after writing the IR text form.
	EmitIRAssembly Options = 1 << iota

	// EmitX8664Assembly stops the pipeline after writing the assembly
	// file.
	EmitX8664Assembly

	// CreateELFObject stops the pipeline after assembling the object.
	CreateELFObject

	// CreateELFExecutable runs the full pipeline through the linker.
	CreateELFExecutable

	// CleanupAssembly removes the assembly file once it has been
	// consumed.
	CleanupAssembly

	// CleanupObject removes the object file once it has been consumed.
	CleanupObject
)

// Has returns true when every bit of flag is set.
func (o Options) Has(flag Options) bool { return o&flag == flag }
