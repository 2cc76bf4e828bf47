package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/ai/mock"
	"github.com/poiesic/reqtrace/core"
	"github.com/poiesic/reqtrace/matching"
	"github.com/poiesic/reqtrace/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	childMap  = core.ColumnMapping{IDColumn: "ID", TextColumn: "Text"}
	parentMap = core.ColumnMapping{IDColumn: "ID", TextColumn: "Text"}
)

func writeJob(t *testing.T, dir, name string) Job {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	child := filepath.Join(dir, name+"_sub.csv")
	parent := filepath.Join(dir, name+"_sys.csv")
	require.NoError(t, os.WriteFile(child, []byte("ID,Text,Owner\nC1,display heart rate,alice\nC2,,bob\n"), 0o644))
	require.NoError(t, os.WriteFile(parent, []byte("ID,Text\nP1,show heart rate\nP2,store battery log\n"), 0o644))
	return Job{
		Name:      name,
		Source:    workbook.Source{ChildPath: child, ParentPath: parent},
		ChildMap:  childMap,
		ParentMap: parentMap,
		Output:    filepath.Join(dir, name+"_trace.csv"),
	}
}

func testConfig() *matching.Config {
	return matching.NewConfig(matching.WithRules(false), matching.WithTopK(2))
}

func mockFactory(providers *atomic.Int32) ProviderFactory {
	return func() (ai.Provider, error) {
		providers.Add(1)
		return mock.NewMockProvider(), nil
	}
}

func TestNewRunner(t *testing.T) {
	_, err := NewRunner(nil, nil)
	assert.ErrorIs(t, err, ErrProviderFactoryRequired)

	var n atomic.Int32
	_, err = NewRunner(mockFactory(&n), matching.NewConfig(matching.WithTopK(0)))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = NewRunner(mockFactory(&n), testConfig(), WithRetry(0, time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	_, err = NewRunner(mockFactory(&n), testConfig(), WithPoolSize(0))
	assert.Error(t, err)
}

func TestRunner_Run(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	jobs := []Job{
		writeJob(t, filepath.Join(dir, "one"), "one"),
		writeJob(t, filepath.Join(dir, "two"), "two"),
		writeJob(t, filepath.Join(dir, "three"), "three"),
	}

	var providers atomic.Int32
	var progress bytes.Buffer
	runner, err := NewRunner(mockFactory(&providers), testConfig(),
		WithPoolSize(2), WithProgress(&progress), WithThreshold(0.99))
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int32(3), providers.Load(), "one provider per job")

	for i, res := range results {
		assert.Equal(t, jobs[i].Name, res.Job.Name, "results keep job order")
		require.NoError(t, res.Err)
		assert.Equal(t, 1, res.Attempts)

		// C1 gets two parents, C2 a placeholder.
		require.Len(t, res.Matrix.Rows, 3)
		assert.Empty(t, res.Matrix.ChildColumns)
		assert.True(t, res.Matrix.Rows[2].IsPlaceholder())
		assert.Equal(t, 2, res.Report.Totals.Children)
		assert.Contains(t, res.Report.OrphanChildren, "C2")

		written, err := workbook.ReadTraceMatrix(jobs[i].Output, "")
		require.NoError(t, err)
		assert.Len(t, written.Rows, 3)
	}
	assert.Contains(t, progress.String(), "3/3")
}

func TestRunner_RequestedExtras(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	child := filepath.Join(dir, "sub.csv")
	parent := filepath.Join(dir, "sys.csv")
	require.NoError(t, os.WriteFile(child, []byte("ID,Text,Owner,Priority,Notes\nC1,display heart rate,alice,high,n1\n"), 0o644))
	require.NoError(t, os.WriteFile(parent, []byte("ID,Text,Area,Risk\nP1,show heart rate,cardio,low\n"), 0o644))
	job := Job{
		Name:        "extras",
		Source:      workbook.Source{ChildPath: child, ParentPath: parent},
		ChildMap:    childMap,
		ParentMap:   parentMap,
		ChildExtra:  []string{"Priority", "Owner", "Priority"},
		ParentExtra: []string{"Risk"},
	}

	var providers atomic.Int32
	runner, err := NewRunner(mockFactory(&providers), testConfig())
	require.NoError(t, err)

	t.Run("subset in request order", func(t *testing.T) {
		results, err := runner.Run(context.Background(), []Job{job})
		require.NoError(t, err)
		m := results[0].Matrix
		assert.Equal(t, []string{"Priority", "Owner"}, m.ChildColumns)
		assert.Equal(t, []string{"Risk"}, m.ParentColumns)
		require.Len(t, m.Rows, 1)
		assert.Equal(t, []string{"high", "alice"}, m.Rows[0].ChildExtra)
		assert.Equal(t, []string{"low"}, m.Rows[0].ParentExtra)
	})

	t.Run("unknown column", func(t *testing.T) {
		bad := job
		bad.ParentExtra = []string{"Owner"}
		before := providers.Load()

		results, err := runner.Run(context.Background(), []Job{bad})
		require.Error(t, err)
		assert.ErrorIs(t, results[0].Err, core.ErrInputShape)
		assert.Contains(t, results[0].Err.Error(), "Owner")
		assert.Equal(t, 1, results[0].Attempts)
		assert.Equal(t, before, providers.Load(), "no provider built for bad input")
	})
}

func TestRunner_RetriesBackendErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	job := writeJob(t, t.TempDir(), "flaky")
	job.Output = ""

	var calls atomic.Int32
	factory := func() (ai.Provider, error) {
		embedder := mock.NewMockEmbedder()
		base := mock.NewMockEmbedder()
		embedder.WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("429 too many requests")
			}
			return base.EmbedTexts(ctx, texts)
		})
		return mock.NewMockProviderWithEmbedder(embedder), nil
	}

	runner, err := NewRunner(factory, testConfig(), WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), []Job{job})
	require.NoError(t, err)
	assert.Equal(t, 2, results[0].Attempts)
	assert.NotNil(t, results[0].Matrix)
}

func TestRunner_InputErrorsAreNotRetried(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	good := writeJob(t, t.TempDir(), "good")
	good.Output = ""
	bad := good
	bad.Name = "bad"
	bad.ChildMap = core.ColumnMapping{IDColumn: "Req", TextColumn: "Text"}

	var providers atomic.Int32
	runner, err := NewRunner(mockFactory(&providers), testConfig(), WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), []Job{bad, good})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInputShape)
	assert.Contains(t, err.Error(), "bad:")

	assert.Equal(t, 1, results[0].Attempts)
	assert.ErrorIs(t, results[0].Err, core.ErrInputShape)
	assert.NoError(t, results[1].Err, "one failed job does not stop the others")
	assert.Equal(t, int32(1), providers.Load(), "no provider is built for unreadable input")
}

func TestRunner_Empty(t *testing.T) {
	var providers atomic.Int32
	runner, err := NewRunner(mockFactory(&providers), testConfig())
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
