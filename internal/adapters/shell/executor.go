// Package shell runs bundler and runtime commands as child processes.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/zerr"
)

// ptySize is the terminal size reported to streamed commands.
var ptySize = &pty.Winsize{Rows: 40, Cols: 120}

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
// Output the caller does not claim is forwarded to logger line by line.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

type process struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
	after  func()
}

func (p *process) Wait() error {
	err := p.cmd.Wait()
	<-p.ioDone
	if p.after != nil {
		p.after()
	}
	return err
}

// Execute runs cmd and waits for it to complete.
func (e *Executor) Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error {
	if cmd == nil || len(cmd.Args) == 0 {
		return nil
	}

	stdoutLog := &logWriter{logger: e.logger, level: levelInfo}
	stderrLog := &logWriter{logger: e.logger, level: levelWarn}
	if stdout == nil {
		stdout = stdoutLog
	}
	if stderr == nil {
		stderr = stderrLog
	}
	flush := func() {
		_ = stdoutLog.Close()
		_ = stderrLog.Close()
	}

	var (
		proc *process
		err  error
	)
	if cmd.Stream {
		proc, err = startPTY(ctx, cmd, stdout, flush)
	} else {
		proc, err = startPiped(ctx, cmd, stdout, stderr, flush)
	}
	if err != nil {
		return zerr.With(err, "command", cmd.Name)
	}

	if err := proc.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.Wrap(err, domain.ErrCommandFailed.Error())
		wrapped = zerr.With(wrapped, "command", cmd.Name)
		return zerr.With(wrapped, "exit_code", exitCode)
	}

	return nil
}

func newCmd(ctx context.Context, cmd *domain.Command) *exec.Cmd {
	env := resolveEnvironment(os.Environ(), cmd.Env)

	name := cmd.Args[0]
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // commands come from the harness file
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env
	return c
}

// startPTY runs the command under a pseudo terminal. The terminal merges both streams into stdout.
func startPTY(ctx context.Context, cmd *domain.Command, stdout io.Writer, flush func()) (*process, error) {
	c := newCmd(ctx, cmd)

	ptmx, err := pty.StartWithSize(c, ptySize)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		defer flush()

		_, _ = io.Copy(stdout, ptmx)
	}()

	return &process{cmd: c, ioDone: ioDone}, nil
}

// startPiped keeps stdout and stderr apart so stdout can be parsed.
func startPiped(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer, flush func()) (*process, error) {
	c := newCmd(ctx, cmd)
	c.Stdout = stdout
	c.Stderr = stderr

	if err := c.Start(); err != nil {
		return nil, zerr.Wrap(err, "failed to start process")
	}

	// exec copies the pipes itself and is done with them once Wait returns.
	ioDone := make(chan struct{})
	close(ioDone)
	return &process{cmd: c, ioDone: ioDone, after: flush}, nil
}

type level uint8

const (
	levelInfo level = iota
	levelWarn
)

// logWriter line-buffers process output into the logger.
type logWriter struct {
	logger ports.Logger
	level  level
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r.
	msg := strings.TrimSuffix(string(line), "\r")

	if w.level == levelInfo {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}

// allowListedEnvVars are the system environment variables a command inherits.
// Everything else must be declared on the scenario.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"TMPDIR": {},
}

// resolveEnvironment layers the scenario environment over the allow-listed system variables.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}

	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the PATH of env rather than of the current process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
