package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/adapters/cas"
	"go.trai.ch/pulse/internal/adapters/compiler"
	"go.trai.ch/pulse/internal/adapters/config"
	"go.trai.ch/pulse/internal/adapters/diagnostics"
	"go.trai.ch/pulse/internal/adapters/fs"
	"go.trai.ch/pulse/internal/app"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports/mocks"
	"go.trai.ch/pulse/internal/operators"
	"go.uber.org/mock/gomock"
)

func newComponents(t *testing.T, logger *mocks.MockLogger) *app.Components {
	t.Helper()
	a := app.New(
		config.NewLoader(logger, operators.NewLibrary()),
		compiler.NewCue(),
		fs.NewResolver(),
		fs.NewHasher(),
		cas.NewStore(),
		diagnostics.New(logger),
		logger,
	)
	return &app.Components{App: a, Logger: logger}
}

func provide(c *app.Components) ComponentProvider {
	return func(context.Context) (*app.Components, func(), error) {
		return c, func() {}, nil
	}
}

func TestRun_Version(t *testing.T) {
	ctrl := gomock.NewController(t)
	stdout := new(bytes.Buffer)

	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer),
		provide(newComponents(t, mocks.NewMockLogger(ctrl))))

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "pulse version")
}

func TestRun_ProviderError(t *testing.T) {
	stderr := new(bytes.Buffer)
	provider := func(context.Context) (*app.Components, func(), error) {
		return nil, func() {}, errors.New("wiring failed")
	}

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: wiring failed")
}

func TestRun_CommandErrorIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).Times(1)

	missing := filepath.Join(t.TempDir(), domain.PatchFileName)
	exitCode := run(context.Background(), []string{"inspect", "--config", missing}, new(bytes.Buffer), new(bytes.Buffer),
		provide(newComponents(t, logger)))

	assert.Equal(t, 1, exitCode)
}

func TestRun_FailedFramesAreNotLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().With(gomock.Any()).Return(logger).AnyTimes()
	// Diagnostics are logged through Error; the frame failure itself is not.
	logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.NotErrorIs(t, err, domain.ErrFrameFailed)
	}).AnyTimes()

	dir := t.TempDir()
	patch := `
version: "1"
settings: {frames: 1}
patch:
  outputs:
    Shader: shader.Shader
  nodes:
    shader: {symbol: Shader, inputs: {Source: missing.frag}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.PatchFileName), []byte(patch), domain.FilePerm))

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"run", "--config", dir}, stdout, new(bytes.Buffer),
		provide(newComponents(t, logger)))

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stdout.String(), ".Shader=✗")
}
