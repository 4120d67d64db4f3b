package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/xmazu/envedit/internal/mask"
)

// StopTimeout is how long Stop waits after SIGTERM before SIGKILL.
var StopTimeout = 5 * time.Second

// Command describes a child process started with an env file loaded.
type Command struct {
	Name    string
	Args    []string
	Env     []string
	Workdir string

	// Secrets are replaced with [REDACTED:KEY] in the child's output.
	Secrets map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run runs c to completion and returns its exit code. A non-zero exit is
// reported through the code with a nil error; err is set only when the
// process could not be run.
func Run(ctx context.Context, c *Command) (int, error) {
	cmd := c.build(ctx)
	return exitCode(cmd.Run())
}

func (c *Command) build(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = c.Env
	cmd.Dir = c.Workdir
	cmd.Stdin = orReader(c.Stdin, os.Stdin)
	cmd.Stdout = c.redact(orWriter(c.Stdout, os.Stdout))
	cmd.Stderr = c.redact(orWriter(c.Stderr, os.Stderr))
	return cmd
}

func (c *Command) redact(w io.Writer) io.Writer {
	if len(c.Secrets) == 0 {
		return w
	}
	return NewRedactor(w, c.Secrets)
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run command: %w", err)
}

func orReader(r, fallback io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return fallback
}

func orWriter(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

// Secrets returns the values that do not look plain according to the mask
// detector, keyed by name. These are what a redacting run hides.
func Secrets(values map[string]string) map[string]string {
	d := mask.NewDetector()
	out := make(map[string]string)
	for k, v := range values {
		if v != "" && !d.Plain(k, v) {
			out[k] = v
		}
	}
	return out
}

// Redactor replaces secret values written through it. Replacement works
// per Write call, so a value split across two writes is not caught.
type Redactor struct {
	w        io.Writer
	replacer *strings.Replacer
}

func NewRedactor(w io.Writer, secrets map[string]string) *Redactor {
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	// Longest value first so a secret that contains another is replaced whole.
	sort.Slice(keys, func(i, j int) bool {
		if len(secrets[keys[i]]) != len(secrets[keys[j]]) {
			return len(secrets[keys[i]]) > len(secrets[keys[j]])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, secrets[k], "[REDACTED:"+k+"]")
	}
	return &Redactor{w: w, replacer: strings.NewReplacer(pairs...)}
}

func (r *Redactor) Write(p []byte) (int, error) {
	if _, err := io.WriteString(r.w, r.replacer.Replace(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Process is a restartable child process, used when the command should be
// restarted after the env file changes. The child runs in its own process
// group so Stop reaches everything it spawned.
type Process struct {
	Command *Command

	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *Process) Start() error {
	p.cmd = p.Command.build(context.Background())
	p.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.Command.Name, err)
	}

	done := make(chan struct{})
	p.done = done
	cmd := p.cmd
	go func() {
		p.err = cmd.Wait()
		close(done)
	}()
	return nil
}

// Done is closed when the current child exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the current child exits and returns its exit code.
func (p *Process) Wait() (int, error) {
	if p.done == nil {
		return -1, fmt.Errorf("process not started")
	}
	<-p.done
	return exitCode(p.err)
}

// Stop sends SIGTERM to the child's process group and SIGKILL if it is
// still running after StopTimeout.
func (p *Process) Stop() error {
	if !p.Running() {
		return nil
	}
	pgid := p.cmd.Process.Pid
	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		return p.cmd.Process.Kill()
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(StopTimeout):
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		<-p.done
		return fmt.Errorf("process did not exit gracefully, killed")
	}
}

func (p *Process) Running() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
