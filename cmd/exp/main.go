// Command exp compiles a source file to an ELF executable, or stops
// earlier at IR, assembly, or object form.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/exp-lang/exp/internal/compiler"
	"github.com/exp-lang/exp/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, "exp [options] <source-file>\n\n")
	fmt.Fprintf(os.Stderr, "\t-h print help.\n")
	fmt.Fprintf(os.Stderr, "\t-v print version.\n")
	fmt.Fprintf(os.Stderr, "\t-o <filename> set output filename.\n")
	fmt.Fprintf(os.Stderr, "\t-c emit an object file.\n")
	fmt.Fprintf(os.Stderr, "\t-s emit an assembly file.\n")
	fmt.Fprintf(os.Stderr, "\t-i emit an exp ir file.\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	flags := flag.NewFlagSet("exp", flag.ExitOnError)
	flags.Usage = usage
	printVersion := flags.Bool("v", false, "print version")
	output := flags.String("o", "", "output filename")
	emitIR := flags.Bool("i", false, "emit an exp ir file")
	emitAssembly := flags.Bool("s", false, "emit an assembly file")
	emitObject := flags.Bool("c", false, "emit an object file")
	debug := flags.Bool("d", false, "enable debug logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if *printVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flags.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	options := compiler.Options(0)
	switch {
	case *emitIR:
		options |= compiler.EmitIRAssembly
	case *emitAssembly:
		options |= compiler.EmitX8664Assembly
	case *emitObject:
		options |= compiler.CreateELFObject | compiler.CleanupAssembly
	default:
		options |= compiler.CreateELFExecutable | compiler.CleanupAssembly | compiler.CleanupObject
	}

	ctx := compiler.NewContext(flags.Arg(0), *output, options)
	if err := compiler.Compile(ctx); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
