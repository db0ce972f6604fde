package git

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/gitautocommit/internal/clock"
	"github.com/bashhack/gitautocommit/internal/logger"
)

const (
	testUserName  = "Test User"
	testUserEmail = "test@example.com"
)

var testTime = time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)

// testRepo is an on-disk repository inspected through fresh go-git handles,
// independent of the Repository under test
type testRepo struct {
	t   *testing.T
	dir string
}

// newTestRepo creates a repository with a configured user and one commit
// on master containing README.md
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	tr := newEmptyRepo(t)
	tr.write("README.md", "# test\n")
	tr.commitAll("initial commit")
	return tr
}

// newEmptyRepo creates a repository with a configured user and no commits
func newEmptyRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	cfg, err := r.Config()
	require.NoError(t, err)
	cfg.User.Name = testUserName
	cfg.User.Email = testUserEmail
	require.NoError(t, r.SetConfig(cfg))

	return &testRepo{t: t, dir: dir}
}

func (tr *testRepo) open() *gogit.Repository {
	tr.t.Helper()
	r, err := gogit.PlainOpen(tr.dir)
	require.NoError(tr.t, err)
	return r
}

func (tr *testRepo) write(name, content string) {
	tr.t.Helper()
	path := filepath.Join(tr.dir, name)
	require.NoError(tr.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tr.t, os.WriteFile(path, []byte(content), 0o644))
}

func (tr *testRepo) remove(name string) {
	tr.t.Helper()
	require.NoError(tr.t, os.Remove(filepath.Join(tr.dir, name)))
}

func (tr *testRepo) read(name string) string {
	tr.t.Helper()
	data, err := os.ReadFile(filepath.Join(tr.dir, name))
	require.NoError(tr.t, err)
	return string(data)
}

// commitAll stages everything and commits as the test user
func (tr *testRepo) commitAll(msg string) plumbing.Hash {
	tr.t.Helper()
	r := tr.open()
	wt, err := r.Worktree()
	require.NoError(tr.t, err)
	require.NoError(tr.t, wt.AddWithOptions(&gogit.AddOptions{All: true}))

	sig := &object.Signature{Name: testUserName, Email: testUserEmail, When: testTime}
	h, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(tr.t, err)
	return h
}

// head returns the branch HEAD points at and its tip
func (tr *testRepo) head() (string, plumbing.Hash) {
	tr.t.Helper()
	ref, err := tr.open().Head()
	require.NoError(tr.t, err)
	return ref.Name().Short(), ref.Hash()
}

// tip returns the commit a branch points at and whether the branch exists
func (tr *testRepo) tip(branch string) (plumbing.Hash, bool) {
	tr.t.Helper()
	ref, err := tr.open().Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return ref.Hash(), true
}

// branches lists local branch short names, sorted
func (tr *testRepo) branches() []string {
	tr.t.Helper()
	iter, err := tr.open().Branches()
	require.NoError(tr.t, err)

	var names []string
	require.NoError(tr.t, iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	}))
	sort.Strings(names)
	return names
}

func (tr *testRepo) commit(h plumbing.Hash) *object.Commit {
	tr.t.Helper()
	c, err := tr.open().CommitObject(h)
	require.NoError(tr.t, err)
	return c
}

// files maps every path in the commit's tree to its content
func (tr *testRepo) files(h plumbing.Hash) map[string]string {
	tr.t.Helper()
	tree, err := tr.commit(h).Tree()
	require.NoError(tr.t, err)

	out := map[string]string{}
	require.NoError(tr.t, tree.Files().ForEach(func(f *object.File) error {
		content, err := f.Contents()
		out[f.Name] = content
		return err
	}))
	return out
}

// isClean reports whether the worktree matches HEAD
func (tr *testRepo) isClean() bool {
	tr.t.Helper()
	wt, err := tr.open().Worktree()
	require.NoError(tr.t, err)
	status, err := wt.Status()
	require.NoError(tr.t, err)
	return status.IsClean()
}

// openRepository opens the Repository under test and closes it at cleanup
func openRepository(t *testing.T, dir string) *Repository {
	t.Helper()
	r, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// newTestLogger returns a logger writing user lines into the returned buffer
func newTestLogger() (*logger.DefaultLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.NewWithOutput(false, "", false, buf, buf), buf
}

func fixedClock() clock.Clock {
	return clock.Fixed(testTime)
}
