package compiler

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// runtimeDirEnv overrides where the linker finds the exp support and
// runtime archives.
const runtimeDirEnv = "EXP_RUNTIME_DIR"

const defaultRuntimeDir = "/usr/local/lib/exp"

func runtimeDir() string {
	if dir := os.Getenv(runtimeDirEnv); dir != "" {
		return dir
	}
	return defaultRuntimeDir
}

// assemble turns the emitted assembly into an ELF object with the
// system assembler.
func assemble(ctx *Context) error {
	cmd := exec.Command("as", ctx.AssemblyPath(), "-o", ctx.ObjectPath())
	logrus.WithField("command", cmd.String()).Debug("assembling")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "as failed: %s", out)
	}
	return nil
}

// link produces the ELF executable, resolving the language runtime
// from the runtime directory.
func link(ctx *Context) error {
	cmd := exec.Command("ld",
		"-o", ctx.OutputPath,
		"-L"+runtimeDir(),
		"-lexps", "-lexprt",
		ctx.ObjectPath(),
	)
	logrus.WithField("command", cmd.String()).Debug("linking")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "ld failed: %s", out)
	}
	return nil
}
