package nodes

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/store"
	"github.com/pflow-dev/pflow-core/internal/tempfile"
	"github.com/pflow-dev/pflow-core/internal/wrap"
	"github.com/pflow-dev/pflow-core/pkg/logging"
)

const shellSubsystem = "ShellNode"

// execCommandContext is a package variable so tests can substitute a fake
// command, mirroring the teacher's containerizer package's
// execCommandContext seam.
var execCommandContext = exec.CommandContext

// osOpen is a package variable so tests can substitute a fake file open
// for the binary-stdin spool path without touching the real filesystem.
var osOpen = os.Open

func init() {
	Register("shell", registry.InterfaceSpec{
		Description: "runs a shell command and captures its output",
		Params: []registry.FieldSpec{
			{Key: "command", Type: "string", Required: true},
			{Key: "args", Type: "array"},
			{Key: "dir", Type: "string"},
			{Key: "timeout_seconds", Type: "number", Description: "defaults to 60"},
			{Key: "stdin", Type: "string", Description: "piped to the command's stdin; []byte values are spooled to a temp file instead of streamed"},
		},
		Outputs: []registry.FieldSpec{
			{Key: "stdout", Type: "string"},
			{Key: "stderr", Type: "string"},
			{Key: "exit_code", Type: "number"},
		},
		Actions: []string{"default", "error"},
	}, "internal/nodes.ShellNode", func(params map[string]interface{}) wrap.NodeRunner {
		return NewShellNode(params)
	})
}

// ShellNode runs one external command via os/exec, capturing stdout,
// stderr, and exit code rather than returning a Go error for a non-zero
// exit — a failing command is ordinary Exec output a workflow routes on,
// not a transport failure the retry loop should engage for.
type ShellNode struct {
	Base
}

// NewShellNode constructs a ShellNode from the node's raw IR params.
func NewShellNode(params map[string]interface{}) *ShellNode {
	return &ShellNode{Base: NewBase(params)}
}

func (n *ShellNode) Clone() wrap.NodeRunner { return &ShellNode{Base: n.cloneBase()} }

type shellPrep struct {
	command string
	args    []string
	dir     string
	timeout time.Duration
	stdin   interface{} // string or []byte, per the "stdin" param; nil if unset
}

func (n *ShellNode) Prep(ctx context.Context, s store.Accessor) (any, error) {
	command := n.stringParam("command", "")
	if command == "" {
		return nil, fmt.Errorf("shell node: missing required param %q", "command")
	}

	var args []string
	if raw, ok := n.Params["args"]; ok {
		if list, ok := raw.([]interface{}); ok {
			for _, v := range list {
				args = append(args, fmt.Sprintf("%v", v))
			}
		}
	}

	timeoutSeconds := toFloat(n.Params["timeout_seconds"], 60)

	return shellPrep{
		command: command,
		args:    args,
		dir:     n.stringParam("dir", ""),
		timeout: time.Duration(timeoutSeconds * float64(time.Second)),
		stdin:   n.Params["stdin"],
	}, nil
}

func (n *ShellNode) Exec(ctx context.Context, prepAny any) (any, error) {
	p := prepAny.(shellPrep)

	runCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := execCommandContext(runCtx, p.command, p.args...)
	if p.dir != "" {
		cmd.Dir = p.dir
	}

	stdinFile, err := attachStdin(ctx, cmd, p.stdin)
	if err != nil {
		return nil, fmt.Errorf("shell node: %w", err)
	}
	if stdinFile != nil {
		defer stdinFile.Close()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug(shellSubsystem, "running %s %v", p.command, p.args)
	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("shell node: %w", runErr)
		}
	}

	return map[string]interface{}{
		"stdout":    stdout.String(),
		"stderr":    stderr.String(),
		"exit_code": exitCode,
	}, nil
}

// attachStdin wires the node's "stdin" param into cmd. A string streams
// directly via an in-memory reader; a []byte is spooled to a temp file
// tracked by the run's tempfile.Tracker (if any, via ctx) and reopened
// for reading, since some commands expect to seek or reread stdin rather
// than consume a single streamed pipe. When a file is opened, the caller
// owns closing it once cmd has finished running.
func attachStdin(ctx context.Context, cmd *exec.Cmd, stdin interface{}) (*os.File, error) {
	switch v := stdin.(type) {
	case nil:
		return nil, nil
	case string:
		cmd.Stdin = bytes.NewBufferString(v)
		return nil, nil
	case []byte:
		tracker, ok := tempfile.FromContext(ctx)
		if !ok {
			cmd.Stdin = bytes.NewReader(v)
			return nil, nil
		}
		path, err := tracker.Create("pflow-stdin-*.bin", v)
		if err != nil {
			return nil, fmt.Errorf("spooling binary stdin: %w", err)
		}
		f, err := osOpen(path)
		if err != nil {
			return nil, fmt.Errorf("reopening spooled stdin %s: %w", path, err)
		}
		cmd.Stdin = f
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported stdin value type %T", stdin)
	}
}

func (n *ShellNode) Post(ctx context.Context, s store.Accessor, prep, exec any) (string, error) {
	out, ok := exec.(map[string]interface{})
	if !ok {
		return "default", fmt.Errorf("shell node: unexpected exec result type %T", exec)
	}
	for k, v := range out {
		s.Set(k, v)
	}
	if code, ok := out["exit_code"].(int); ok && code != 0 {
		return "error", nil
	}
	return "default", nil
}
