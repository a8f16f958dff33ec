package builtin

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/brushsh/brush/interp"
	"golang.org/x/sync/errgroup"
)

// Grounded on original_source/shell/src/jobs.rs and
// original_source/shell/src/builtins/{jobs,fg,bg,wait,kill}.rs; the
// teacher has none of this (mvdan.cc/sh never backgrounds anything).

func jobsCmd(ctx *interp.ExecContext, args []string) interp.Result {
	for _, j := range ctx.Shell.Jobs.All() {
		fmt.Fprintf(ctx.Stdout, "[%d]  %-10s %s\n", j.ID, j.State, j.Command)
	}
	return normal(interp.Success)
}

func fgCmd(ctx *interp.ExecContext, args []string) interp.Result {
	spec := ""
	if len(args) > 0 {
		spec = args[0]
	}
	j, err := ctx.Shell.Jobs.Resolve(spec)
	if err != nil {
		return failf(ctx, "%v", err)
	}
	fmt.Fprintln(ctx.Stdout, j.Command)
	state, err := j.Wait()
	if err != nil {
		return failf(ctx, "%v", err)
	}
	code := interp.ExitCode(state.ExitCode())
	ctx.Shell.Jobs.SetState(j.ID, interp.JobDone, code)
	ctx.Shell.Jobs.Remove(j.ID)
	return normal(code)
}

// bgCmd resumes a stopped job in the background without waiting for
// it: it sends SIGCONT through Job.Signal, which reaches the job's
// backing process (not a process group), and marks the job running.
func bgCmd(ctx *interp.ExecContext, args []string) interp.Result {
	spec := ""
	if len(args) > 0 {
		spec = args[0]
	}
	j, err := ctx.Shell.Jobs.Resolve(spec)
	if err != nil {
		return failf(ctx, "%v", err)
	}
	if err := j.Signal(syscall.SIGCONT); err != nil {
		return failf(ctx, "%v", err)
	}
	ctx.Shell.Jobs.SetState(j.ID, interp.JobRunning, interp.Success)
	fmt.Fprintf(ctx.Stdout, "[%d]  %s &\n", j.ID, j.Command)
	return normal(interp.Success)
}

// waitCmd waits for one or more background jobs concurrently via
// errgroup.Group, the one concrete home found in this tree for the
// teacher's golang.org/x/sync dependency (unused for anything else:
// the executor's own pipelines already coordinate with plain
// channels, grounded on interp/exec.go's runPipeline).
func waitCmd(ctx *interp.ExecContext, args []string) interp.Result {
	jobs := ctx.Shell.Jobs.All()
	if len(args) > 0 {
		jobs = jobs[:0]
		for _, spec := range args {
			j, err := ctx.Shell.Jobs.Resolve(spec)
			if err != nil {
				return failf(ctx, "%v", err)
			}
			jobs = append(jobs, j)
		}
	}
	if len(jobs) == 0 {
		return normal(interp.Success)
	}

	var g errgroup.Group
	codes := make([]interp.ExitCode, len(jobs))
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			state, err := j.Wait()
			if err != nil {
				return err
			}
			codes[i] = interp.ExitCode(state.ExitCode())
			ctx.Shell.Jobs.SetState(j.ID, interp.JobDone, codes[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failf(ctx, "%v", err)
	}
	for _, j := range jobs {
		ctx.Shell.Jobs.Remove(j.ID)
	}
	return normal(codes[len(codes)-1])
}

var signalByName = map[string]syscall.Signal{
	"HUP": syscall.SIGHUP, "INT": syscall.SIGINT, "QUIT": syscall.SIGQUIT,
	"KILL": syscall.SIGKILL, "TERM": syscall.SIGTERM, "USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2, "CONT": syscall.SIGCONT, "STOP": syscall.SIGSTOP,
	"TSTP": syscall.SIGTSTP, "PIPE": syscall.SIGPIPE, "ALRM": syscall.SIGALRM,
}

// killCmd implements `kill [-SIG] pid|%job ...`, resolving `%`-prefixed
// targets through the job manager and falling through to a raw PID for
// everything else.
func killCmd(ctx *interp.ExecContext, args []string) interp.Result {
	sig := syscall.SIGTERM
	i := 0
	if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		name := strings.ToUpper(strings.TrimPrefix(args[0], "-"))
		if n, err := strconv.Atoi(name); err == nil {
			sig = syscall.Signal(n)
		} else if s, ok := signalByName[name]; ok {
			sig = s
		} else {
			return usageError(ctx, "%s: invalid signal specification", args[0])
		}
		i = 1
	}
	if i >= len(args) {
		return usageError(ctx, "usage: kill [-signal] pid|%%job ...")
	}
	code := interp.Success
	for _, target := range args[i:] {
		if strings.HasPrefix(target, "%") {
			j, err := ctx.Shell.Jobs.Resolve(target)
			if err != nil {
				fmt.Fprintf(ctx.Stderr, "%s: %v\n", ctx.Name, err)
				code = interp.GeneralError
				continue
			}
			if err := j.Signal(sig); err != nil {
				fmt.Fprintf(ctx.Stderr, "%s: %v\n", ctx.Name, err)
				code = interp.GeneralError
			}
			continue
		}
		pid, err := strconv.Atoi(target)
		if err != nil {
			fmt.Fprintf(ctx.Stderr, "%s: %s: arguments must be process or job IDs\n", ctx.Name, target)
			code = interp.GeneralError
			continue
		}
		if err := syscall.Kill(pid, sig); err != nil {
			fmt.Fprintf(ctx.Stderr, "%s: (%d): %v\n", ctx.Name, pid, err)
			code = interp.GeneralError
		}
	}
	return normal(code)
}
