package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Shell)(nil)

// Placeholders expanded in a shell compiler command template.
const (
	PlaceholderInput  = "{input}"
	PlaceholderOutput = "{output}"
	PlaceholderEntry  = "{entry}"
	PlaceholderStage  = "{stage}"
	PlaceholderName   = "{name}"
)

// maxStderrTail bounds the compiler output attached to a failed compile.
const maxStderrTail = 2048

// Shell compiles resources by running the external command configured in the request.
//
// The artifact is the file written to {output} when the template names it, and the
// command's stdout otherwise. Inline sources are written to a temporary {input} file.
type Shell struct {
	logger ports.Logger
}

// NewShell creates a Shell compiler that logs compiler stderr at debug level.
func NewShell(logger ports.Logger) *Shell {
	return &Shell{logger: logger}
}

// Compile runs the command template of req.
func (s *Shell) Compile(ctx context.Context, req domain.CompileRequest) ([]byte, error) {
	if len(req.Command) == 0 {
		return nil, zerr.With(domain.ErrNoCompiler, "stage", string(req.Key.Stage))
	}

	work, err := os.MkdirTemp("", "pulse-compile-*")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create compile directory")
	}
	defer os.RemoveAll(work) //nolint:errcheck // Best effort cleanup

	input := req.Path
	if input == "" {
		input = filepath.Join(work, "source")
		if err := os.WriteFile(input, req.Source, domain.FilePerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to write inline source"), "resource", req.DebugName)
		}
	}
	output := filepath.Join(work, "artifact")

	argv, usesOutput := expand(req.Command, map[string]string{
		PlaceholderInput:  input,
		PlaceholderOutput: output,
		PlaceholderEntry:  req.Key.EntryPoint,
		PlaceholderStage:  string(req.Key.Stage),
		PlaceholderName:   req.DebugName,
	})

	name := argv[0]
	cmdEnv := resolveEnvironment(os.Environ(), map[string]string{
		"PULSE_RESOURCE": req.DebugName,
		"PULSE_STAGE":    string(req.Key.Stage),
		"PULSE_ENTRY":    req.Key.EntryPoint,
	})
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // user configured command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Env = cmdEnv
	if req.Path != "" {
		cmd.Dir = filepath.Dir(req.Path)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &lineWriter{logger: s.logger, buf: &stderr}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.With(zerr.Wrap(err, "compiler command failed"), "exit_code", exitCode)
		if tail := tailOf(stderr.String()); tail != "" {
			wrapped = zerr.With(wrapped, "stderr", tail)
		}
		return nil, zerr.With(wrapped, "command", name)
	}

	if !usesOutput {
		return stdout.Bytes(), nil
	}
	data, err := os.ReadFile(output) //nolint:gosec // Path is inside our temp dir
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "compiler wrote no output file"), "command", name)
	}
	return data, nil
}

// expand substitutes placeholders in every argument and reports whether {output} was used.
func expand(template []string, values map[string]string) ([]string, bool) {
	usesOutput := false
	argv := make([]string, len(template))
	for i, arg := range template {
		if strings.Contains(arg, PlaceholderOutput) {
			usesOutput = true
		}
		for placeholder, v := range values {
			arg = strings.ReplaceAll(arg, placeholder, v)
		}
		argv[i] = arg
	}
	return argv, usesOutput
}

func tailOf(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxStderrTail {
		return s
	}
	return s[len(s)-maxStderrTail:]
}

// lineWriter keeps everything written to it and logs complete lines at debug level.
type lineWriter struct {
	logger  ports.Logger
	buf     *bytes.Buffer
	partial []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.logger == nil {
		return len(p), nil
	}
	w.partial = append(w.partial, p...)
	for {
		idx := bytes.IndexByte(w.partial, '\n')
		if idx < 0 {
			break
		}
		w.logger.Debug(string(w.partial[:idx]))
		w.partial = w.partial[idx+1:]
	}
	return len(p), nil
}

// resolveEnvironment overlays overrides on the system environment.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
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
