package corr2

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/hupe1980/stile"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "corr2"

// Runner executes corr2.
type Runner struct {
	// Binary is the executable (DefaultBinary when empty).
	Binary string
	// ConfigFile, when set, is passed before the keyword arguments.
	ConfigFile string
	// Dir is the working directory.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Logger *stile.Logger
}

// Command builds the corr2 invocation for p without starting it.
func (r *Runner) Command(ctx context.Context, p Params) *exec.Cmd {
	bin := r.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	var args []string
	if r.ConfigFile != "" {
		args = append(args, r.ConfigFile)
	}
	args = append(args, p.Args()...)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd
}

// Run executes corr2 with p and waits for it to exit.
func (r *Runner) Run(ctx context.Context, p Params) error {
	log := r.Logger.OrNoop()
	cmd := r.Command(ctx, p)

	start := time.Now()
	log.DebugContext(ctx, "running corr2", "args", cmd.Args)
	if err := cmd.Run(); err != nil {
		log.ErrorContext(ctx, "corr2 failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("corr2: %w", err)
	}
	log.InfoContext(ctx, "corr2 finished", "duration", time.Since(start))
	return nil
}
