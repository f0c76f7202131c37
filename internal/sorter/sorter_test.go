package sorter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixsort/internal/history"
	"pixsort/internal/library"
	"pixsort/pkg/classifier"
)

// scriptedClassifier returns canned decisions in order and records every
// request it saw.
type scriptedClassifier struct {
	decisions []classifier.Decision
	errs      []error
	calls     int
	requests  []classifier.Request
}

func (s *scriptedClassifier) Classify(ctx context.Context, req classifier.Request) (classifier.Decision, error) {
	s.requests = append(s.requests, req)
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return classifier.Decision{}, s.errs[i]
	}
	if i < len(s.decisions) {
		return s.decisions[i], nil
	}
	return classifier.Decision{}, errors.New("unexpected extra classify call")
}

type testEnv struct {
	intake string
	lib    *library.Library
	hist   *history.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	lib, err := library.Open(t.TempDir())
	require.NoError(t, err)
	hist, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })
	return testEnv{intake: t.TempDir(), lib: lib, hist: hist}
}

func (e testEnv) addImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.intake, name)
	require.NoError(t, os.WriteFile(path, []byte("imagedata"), 0o644))
	return path
}

func place(folder string) classifier.Decision {
	return classifier.Decision{Action: classifier.ActionPlace, Folder: folder, Raw: "img:" + folder}
}

func createFolder(folder string) classifier.Decision {
	return classifier.Decision{Action: classifier.ActionCreateFolder, Folder: folder, Raw: "create_folder:" + folder}
}

func TestRun_MovesClassifiedFile(t *testing.T) {
	env := newTestEnv(t)
	src := env.addImage(t, "cat.jpg")
	clf := &scriptedClassifier{decisions: []classifier.Decision{place("cats")}}

	report, err := New(clf, env.lib, env.hist).Run(context.Background(), env.intake, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)
	assert.Equal(t, 0, report.Skipped)
	assert.NotEmpty(t, report.RunID)

	// Gone from intake, present exactly once under the category folder.
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(filepath.Join(env.lib.Root(), "cats"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cat.jpg", entries[0].Name())

	// Recorded in the ledger.
	moves, err := env.hist.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, report.RunID, moves[0].RunID)
	assert.Equal(t, "cats", moves[0].Folder)
}

func TestRun_CreateFolderThenPlace(t *testing.T) {
	env := newTestEnv(t)
	env.addImage(t, "shot.png")
	clf := &scriptedClassifier{decisions: []classifier.Decision{
		createFolder("screenshots"),
		place("screenshots"),
	}}

	report, err := New(clf, env.lib, env.hist).Run(context.Background(), env.intake, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)
	assert.Equal(t, 1, report.FoldersCreated)
	assert.Equal(t, 2, clf.calls, "folder creation must trigger exactly one re-ask")

	// Exactly one new folder named screenshots.
	folders, err := env.lib.Folders()
	require.NoError(t, err)
	assert.Equal(t, []string{"screenshots"}, folders)

	// The second request saw the freshly created folder.
	assert.Contains(t, clf.requests[1].Folders, "screenshots")
}

func TestRun_RepeatedCreateFolderSkipsFile(t *testing.T) {
	env := newTestEnv(t)
	src := env.addImage(t, "odd.bmp")
	clf := &scriptedClassifier{decisions: []classifier.Decision{
		createFolder("one"),
		createFolder("two"),
	}}

	report, err := New(clf, env.lib, env.hist).Run(context.Background(), env.intake, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Moved)
	assert.Equal(t, 1, report.Skipped)

	// The file stays in intake for a future run.
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestRun_ClassifierErrorLeavesFileInPlace(t *testing.T) {
	env := newTestEnv(t)
	src := env.addImage(t, "broken.jpg")
	env.addImage(t, "fine.jpg")
	clf := &scriptedClassifier{
		errs:      []error{errors.New("remote call failed"), nil},
		decisions: []classifier.Decision{{}, place("cats")},
	}

	report, err := New(clf, env.lib, env.hist).Run(context.Background(), env.intake, Options{})
	require.NoError(t, err, "a per-file failure must not fail the run")
	assert.Equal(t, 1, report.Moved)
	assert.Equal(t, 1, report.Skipped)

	_, err = os.Stat(src)
	assert.NoError(t, err, "the failed file stays in intake")
}

func TestRun_NonImageFilesNeverSubmitted(t *testing.T) {
	env := newTestEnv(t)
	env.addImage(t, "notes.txt")
	env.addImage(t, "cat.jpg")
	clf := &scriptedClassifier{decisions: []classifier.Decision{place("cats")}}

	_, err := New(clf, env.lib, env.hist).Run(context.Background(), env.intake, Options{})
	require.NoError(t, err)

	require.Len(t, clf.requests, 1)
	assert.Equal(t, "cat.jpg", clf.requests[0].ImageName)
}

func TestRun_DryRunTouchesNothing(t *testing.T) {
	env := newTestEnv(t)
	src := env.addImage(t, "cat.jpg")
	clf := &scriptedClassifier{decisions: []classifier.Decision{createFolder("cats")}}

	report, err := New(clf, env.lib, env.hist).Run(context.Background(), env.intake, Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusWouldMove, report.Outcomes[0].Status)

	_, err = os.Stat(src)
	assert.NoError(t, err)
	folders, err := env.lib.Folders()
	require.NoError(t, err)
	assert.Empty(t, folders, "dry run must not create folders")

	moves, err := env.hist.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, moves, "dry run must not write the ledger")
}

func TestRun_Limit(t *testing.T) {
	env := newTestEnv(t)
	env.addImage(t, "a.jpg")
	env.addImage(t, "b.jpg")
	env.addImage(t, "c.jpg")
	clf := &scriptedClassifier{decisions: []classifier.Decision{place("misc"), place("misc")}}

	report, err := New(clf, env.lib, env.hist).Run(context.Background(), env.intake, Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, report.Outcomes, 2)
	assert.Equal(t, 2, report.Moved)
}

func TestRun_CreatesMissingIntake(t *testing.T) {
	env := newTestEnv(t)
	missing := filepath.Join(t.TempDir(), "in")
	clf := &scriptedClassifier{}

	report, err := New(clf, env.lib, env.hist).Run(context.Background(), missing, Options{})
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)

	info, err := os.Stat(missing)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
