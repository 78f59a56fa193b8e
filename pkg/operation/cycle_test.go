// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/batchcopier/pkg/batch"
	"github.com/walteh/batchcopier/pkg/metrics"
	"github.com/walteh/batchcopier/pkg/operation"
	"github.com/walteh/batchcopier/pkg/pattern"
	"github.com/walteh/batchcopier/pkg/transfer"
)

type testEnv struct {
	ctx      context.Context
	input    string
	backup   string
	target   string
	counters *metrics.Counters
}

// 🧪 createTestEnv creates the three directories and an input populated with files
func createTestEnv(t *testing.T, files ...string) *testEnv {
	t.Helper()

	root := t.TempDir()
	env := &testEnv{
		input:    filepath.Join(root, "input"),
		backup:   filepath.Join(root, "backup"),
		target:   filepath.Join(root, "target"),
		counters: metrics.NewCounters(),
	}
	for _, dir := range []string{env.input, env.backup, env.target} {
		require.NoError(t, os.Mkdir(dir, 0755))
	}
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(env.input, name), []byte(name), 0644))
	}

	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.TraceLevel)
	env.ctx = logger.WithContext(context.Background())
	return env
}

func (env *testEnv) options(t *testing.T, expr string) operation.Options {
	t.Helper()

	marker, err := pattern.Compile(expr)
	require.NoError(t, err)

	return operation.Options{
		InputDir:   env.input,
		BackupDir:  env.backup,
		TargetDir:  env.target,
		Marker:     marker,
		Grouper:    batch.NewGrouper(nil),
		Transferor: transfer.New(),
		Counters:   env.counters,
	}
}

func (env *testEnv) runner(t *testing.T, expr string) *operation.BatchRunner {
	t.Helper()

	r, err := operation.New(env.options(t, expr))
	require.NoError(t, err)
	return r
}

// 🔧 mockTransferor is a testify mock of operation.Transferor
type mockTransferor struct {
	mock.Mock
}

func (m *mockTransferor) Transfer(ctx context.Context, file, backupDir, targetDir string) error {
	return m.Called(ctx, file, backupDir, targetDir).Error(0)
}

// 🔧 recordingObserver remembers what it was told
type recordingObserver struct {
	started     int
	transferred []string
	failed      []string
	reports     []operation.CycleReport
}

func (o *recordingObserver) StartCycle(_ context.Context, markers int) { o.started = markers }
func (o *recordingObserver) FileTransferred(_ context.Context, file string) {
	o.transferred = append(o.transferred, filepath.Base(file))
}
func (o *recordingObserver) BatchFailed(_ context.Context, marker string, _ error) {
	o.failed = append(o.failed, filepath.Base(marker))
}
func (o *recordingObserver) EndCycle(_ context.Context, report operation.CycleReport) {
	o.reports = append(o.reports, report)
}

func TestRunCycleSingleMarker(t *testing.T) {
	env := createTestEnv(t, "run.001.ok")

	report := env.runner(t, `run\.\d{3}\.ok`).RunCycle(env.ctx)

	require.NoError(t, report.Err)
	assert.Equal(t, 1, report.Markers)
	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 0, report.Failed)
	assert.False(t, report.End.Before(report.Start))

	assert.NoFileExists(t, filepath.Join(env.input, "run.001.ok"))
	assert.FileExists(t, filepath.Join(env.target, "run.001.ok"))
	assert.FileExists(t, filepath.Join(env.backup, "run.001.ok"))

	assert.Equal(t, int64(1), env.counters.Get(metrics.Executions))
	assert.Equal(t, int64(1), env.counters.Get(metrics.FilesProcessed))
	assert.Equal(t, int64(0), env.counters.Get(metrics.Failures))
}

func TestRunCycleMovesWholeBatch(t *testing.T) {
	env := createTestEnv(t, "b.ok", "b.zip", "b_1.zip", "b_2.zip", "c.zip")
	observer := &recordingObserver{}

	opts := env.options(t, `.*\.ok`)
	opts.Observer = observer
	r, err := operation.New(opts)
	require.NoError(t, err)

	report := r.RunCycle(env.ctx)
	require.NoError(t, report.Err)
	assert.Equal(t, 4, report.Files)

	for _, name := range []string{"b.ok", "b.zip", "b_1.zip", "b_2.zip"} {
		assert.NoFileExists(t, filepath.Join(env.input, name))
		assert.FileExists(t, filepath.Join(env.target, name))
		assert.FileExists(t, filepath.Join(env.backup, name))
	}
	assert.FileExists(t, filepath.Join(env.input, "c.zip"), "unrelated payload should stay")

	assert.Equal(t, 1, observer.started)
	assert.Equal(t, []string{"b.zip", "b_1.zip", "b_2.zip", "b.ok"}, observer.transferred)
	assert.Empty(t, observer.failed)
	require.Len(t, observer.reports, 1)
	assert.Equal(t, int64(4), env.counters.Get(metrics.FilesProcessed))
}

func TestRunCycleIsolatesFailingBatch(t *testing.T) {
	env := createTestEnv(t, "a.ok", "a.zip", "b.ok", "b.zip", "b_1.zip", "c.ok", "c_1.zip")
	require.NoError(t, os.WriteFile(filepath.Join(env.target, "b_1.zip"), []byte("existing"), 0644))

	report := env.runner(t, `.*\.ok`).RunCycle(env.ctx)

	require.NoError(t, report.Err)
	assert.Equal(t, 3, report.Markers)
	assert.Equal(t, 2, report.Batches)
	assert.Equal(t, 1, report.Failed)

	for _, name := range []string{"a.ok", "a.zip", "c.ok", "c_1.zip"} {
		assert.FileExists(t, filepath.Join(env.target, name), "%s should be moved", name)
	}

	// b.zip went through, b_1.zip collided, the marker never moved
	assert.FileExists(t, filepath.Join(env.target, "b.zip"))
	assert.FileExists(t, filepath.Join(env.input, "b_1.zip"))
	assert.FileExists(t, filepath.Join(env.backup, "b_1.zip"))
	assert.FileExists(t, filepath.Join(env.input, "b.ok"))
	assert.NoFileExists(t, filepath.Join(env.backup, "b.ok"))

	assert.Equal(t, int64(1), env.counters.Get(metrics.Failures))
	assert.Equal(t, int64(5), env.counters.Get(metrics.FilesProcessed))
}

func TestRunCycleRetriesFailedBatch(t *testing.T) {
	env := createTestEnv(t, "b.ok", "b.zip")
	collision := filepath.Join(env.target, "b.zip")
	require.NoError(t, os.WriteFile(collision, []byte("existing"), 0644))

	r := env.runner(t, `.*\.ok`)

	first := r.RunCycle(env.ctx)
	assert.Equal(t, 1, first.Failed)
	assert.FileExists(t, filepath.Join(env.input, "b.ok"))

	require.NoError(t, os.Remove(collision))

	second := r.RunCycle(env.ctx)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, 2, second.Files)
	assert.FileExists(t, filepath.Join(env.target, "b.ok"))
	assert.FileExists(t, filepath.Join(env.target, "b.zip"))

	assert.Equal(t, int64(2), env.counters.Get(metrics.Executions))
	assert.Equal(t, int64(1), env.counters.Get(metrics.Failures))
}

func TestRunCycleStopsBatchAtFirstFailure(t *testing.T) {
	env := createTestEnv(t, "a.ok", "a.zip", "a_1.zip", "b.ok")
	transferor := &mockTransferor{}

	file := func(name string) string { return filepath.Join(env.input, name) }
	transferor.On("Transfer", mock.Anything, file("a.zip"), env.backup, env.target).Return(nil).Once()
	transferor.On("Transfer", mock.Anything, file("a_1.zip"), env.backup, env.target).Return(&transfer.Failure{
		Op:   transfer.OpCopy,
		Path: file("a_1.zip"),
		Err:  errors.New("disk full"),
	}).Once()
	transferor.On("Transfer", mock.Anything, file("b.ok"), env.backup, env.target).Return(nil).Once()

	opts := env.options(t, `.*\.ok`)
	opts.Transferor = transferor
	observer := &recordingObserver{}
	opts.Observer = observer
	r, err := operation.New(opts)
	require.NoError(t, err)

	report := r.RunCycle(env.ctx)

	transferor.AssertExpectations(t)
	transferor.AssertNotCalled(t, "Transfer", mock.Anything, file("a.ok"), env.backup, env.target)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, []string{"a.ok"}, observer.failed)
	assert.Equal(t, int64(2), env.counters.Get(metrics.FilesProcessed))
}

func TestRunCycleListingFailure(t *testing.T) {
	env := createTestEnv(t)
	opts := env.options(t, `.*\.ok`)
	opts.InputDir = filepath.Join(env.input, "missing")
	r, err := operation.New(opts)
	require.NoError(t, err)

	report := r.RunCycle(env.ctx)

	require.Error(t, report.Err)
	var ioErr *batch.IOFailure
	assert.True(t, errors.As(report.Err, &ioErr), "should wrap an IOFailure")
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, int64(1), env.counters.Get(metrics.Executions))
	assert.Equal(t, int64(1), env.counters.Get(metrics.Failures))
}

// 🔧 panickingGrouper simulates a bug inside a cycle
type panickingGrouper struct{}

func (panickingGrouper) ListMarkers(context.Context, string, *pattern.Pattern) ([]string, error) {
	panic("boom")
}

func (panickingGrouper) GroupFor(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func TestRunCycleRecoversFromPanic(t *testing.T) {
	env := createTestEnv(t)
	opts := env.options(t, `.*\.ok`)
	opts.Grouper = panickingGrouper{}
	r, err := operation.New(opts)
	require.NoError(t, err)

	var report operation.CycleReport
	require.NotPanics(t, func() { report = r.RunCycle(env.ctx) })

	require.Error(t, report.Err)
	assert.Contains(t, report.Err.Error(), "boom")
	assert.Equal(t, int64(1), env.counters.Get(metrics.Failures))
}

func TestRunCycleCancelledContext(t *testing.T) {
	env := createTestEnv(t, "a.ok", "b.ok")
	ctx, cancel := context.WithCancel(env.ctx)
	cancel()

	report := env.runner(t, `.*\.ok`).RunCycle(ctx)

	assert.Equal(t, 2, report.Markers)
	assert.Equal(t, 0, report.Batches)
	assert.FileExists(t, filepath.Join(env.input, "a.ok"))
	assert.FileExists(t, filepath.Join(env.input, "b.ok"))
	assert.Equal(t, int64(1), env.counters.Get(metrics.Executions))
}

func TestNewValidatesOptions(t *testing.T) {
	env := createTestEnv(t)

	tests := []struct {
		name        string
		mutate      func(o *operation.Options)
		errContains string
	}{
		{name: "missing_input", mutate: func(o *operation.Options) { o.InputDir = "" }, errContains: "input directory is required"},
		{name: "missing_backup", mutate: func(o *operation.Options) { o.BackupDir = "" }, errContains: "backup directory is required"},
		{name: "missing_target", mutate: func(o *operation.Options) { o.TargetDir = "" }, errContains: "target directory is required"},
		{name: "missing_marker", mutate: func(o *operation.Options) { o.Marker = nil }, errContains: "marker pattern is required"},
		{name: "missing_grouper", mutate: func(o *operation.Options) { o.Grouper = nil }, errContains: "grouper is required"},
		{name: "missing_transferor", mutate: func(o *operation.Options) { o.Transferor = nil }, errContains: "transferor is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := env.options(t, `.*\.ok`)
			tt.mutate(&opts)
			_, err := operation.New(opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}

	t.Run("defaults_optional_collaborators", func(t *testing.T) {
		opts := env.options(t, `.*\.ok`)
		opts.Counters = nil
		opts.Observer = nil
		r, err := operation.New(opts)
		require.NoError(t, err)
		assert.NotPanics(t, func() { r.RunCycle(env.ctx) })
	})
}
