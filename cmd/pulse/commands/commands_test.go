package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/cmd/pulse/commands"
	"go.trai.ch/pulse/internal/app"
	"go.trai.ch/pulse/internal/build"
)

type mockApp struct {
	runOpts     *app.RunOptions
	watchOpts   *app.WatchOptions
	inspectPath *string
	cleanPath   *string
	err         error
}

func (m *mockApp) Run(_ context.Context, opts app.RunOptions) error {
	m.runOpts = &opts
	return m.err
}

func (m *mockApp) Watch(_ context.Context, opts app.WatchOptions) error {
	m.watchOpts = &opts
	return m.err
}

func (m *mockApp) Inspect(_ context.Context, path string) error {
	m.inspectPath = &path
	return m.err
}

func (m *mockApp) Clean(_ context.Context, path string) error {
	m.cleanPath = &path
	return m.err
}

func execute(t *testing.T, mock *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "run", ".Result", "osc.Out", "--frames", "8", "--config", "demo/pulse.yaml",
			"--changes-only", "--output-mode", "tui", "--inspect")
		require.NoError(t, err)
		require.NotNil(t, mock.runOpts)
		assert.Equal(t, app.RunOptions{
			ConfigPath:  "demo/pulse.yaml",
			Frames:      8,
			Outputs:     []string{".Result", "osc.Out"},
			OutputMode:  "tui",
			Inspect:     true,
			ChangesOnly: true,
		}, *mock.runOpts)
	})

	t.Run("defaults", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "run")
		require.NoError(t, err)
		require.NotNil(t, mock.runOpts)
		assert.Equal(t, "linear", mock.runOpts.OutputMode)
		assert.Zero(t, mock.runOpts.Frames)
		assert.Empty(t, mock.runOpts.ConfigPath)
		assert.Empty(t, mock.runOpts.Outputs)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{err: errors.New("simulated error")}
		_, err := execute(t, mock, "run")
		require.ErrorContains(t, err, "simulated error")
	})
}

func TestCommands_Watch(t *testing.T) {
	t.Run("ci forces linear", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "watch", "--ci", "--metrics-addr", ":9464", "-c", "patches")
		require.NoError(t, err)
		require.NotNil(t, mock.watchOpts)
		assert.Equal(t, "linear", mock.watchOpts.OutputMode)
		assert.Equal(t, ":9464", mock.watchOpts.MetricsAddr)
		assert.Equal(t, "patches", mock.watchOpts.ConfigPath)
		assert.True(t, mock.watchOpts.ChangesOnly)
	})

	t.Run("auto by default", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "watch", ".Out")
		require.NoError(t, err)
		assert.Equal(t, "auto", mock.watchOpts.OutputMode)
		assert.Equal(t, []string{".Out"}, mock.watchOpts.Outputs)
	})
}

func TestCommands_InspectAndClean(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "inspect", "--config", "a.yaml")
	require.NoError(t, err)
	require.NotNil(t, mock.inspectPath)
	assert.Equal(t, "a.yaml", *mock.inspectPath)

	_, err = execute(t, mock, "clean")
	require.NoError(t, err)
	require.NotNil(t, mock.cleanPath)
	assert.Empty(t, *mock.cleanPath)

	_, err = execute(t, mock, "inspect", "extra")
	require.Error(t, err)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pulse version "+build.Version)
}
