//go:build integration

package integration

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reservedBranch = "GitAutocommit"

var binary string

func TestMain(m *testing.M) {
	if os.Getenv("GITAUTOCOMMIT_INTEGRATION_TESTS") != "1" {
		os.Exit(0)
	}

	dir, err := os.MkdirTemp("", "gitautocommit-bin-*")
	if err != nil {
		panic(err)
	}
	binary = filepath.Join(dir, "gitautocommit")
	build := exec.Command("go", "build", "-o", binary, "../../cmd/gitautocommit")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		panic("failed to build gitautocommit: " + err.Error())
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// setupTestRepo creates a repository with one commit on master
func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	runGit(t, dir, "init", "-b", "master")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "initial.txt"), []byte("Initial content\n"), 0o644))
	runGit(t, dir, "add", "initial.txt")
	runGit(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", append([]string{"-C", dir}, args...)...).CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

type process struct {
	cmd    *exec.Cmd
	output *bytes.Buffer
}

// start launches the binary with an isolated lock directory
func start(t *testing.T, lockDir string, args ...string) *process {
	t.Helper()
	var output bytes.Buffer
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(), "TMPDIR="+lockDir)
	cmd.Stdout = &output
	cmd.Stderr = &output
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})
	return &process{cmd: cmd, output: &output}
}

func (p *process) wait(t *testing.T) int {
	t.Helper()
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	require.NoError(t, err)
	return 0
}

func waitForCommits(t *testing.T, dir, branch string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		out, err := exec.Command("git", "-C", dir, "rev-list", "--count", "master.."+branch).Output()
		if err != nil {
			return false
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(out)))
		return err == nil && n >= want
	}, 30*time.Second, 250*time.Millisecond)
}

func TestSnapshotAndSquash(t *testing.T) {
	repo := setupTestRepo(t)
	lockDir := t.TempDir()
	before := runGit(t, repo, "rev-parse", "HEAD")

	p := start(t, lockDir, "-d", repo, "-i", "10", "-m", "Session work")

	require.NoError(t, os.WriteFile(filepath.Join(repo, "test.txt"), []byte("Change 1\n"), 0o644))
	waitForCommits(t, repo, reservedBranch, 1)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "test.txt"), []byte("Change 1\nChange 2\n"), 0o644))
	require.NoError(t, p.cmd.Process.Signal(syscall.SIGINT))

	assert.Equal(t, 0, p.wait(t), p.output.String())
	assert.Contains(t, p.output.String(), "Session summary")

	assert.Equal(t, "master", runGit(t, repo, "rev-parse", "--abbrev-ref", "HEAD"))
	assert.Equal(t, "Session work", runGit(t, repo, "log", "-1", "--format=%s"))
	assert.Equal(t, before, runGit(t, repo, "rev-parse", "HEAD~1"))
	assert.Equal(t, "Change 1\nChange 2", runGit(t, repo, "show", "HEAD:test.txt"))
	assert.Empty(t, runGit(t, repo, "branch", "--list", reservedBranch))
}

func TestLockFile(t *testing.T) {
	repo := setupTestRepo(t)
	lockDir := t.TempDir()

	first := start(t, lockDir, "-d", repo, "-i", "60", "-m", "first")
	require.Eventually(t, func() bool {
		return strings.Contains(first.output.String(), "Monitoring")
	}, 10*time.Second, 100*time.Millisecond)

	second := start(t, lockDir, "-d", repo, "-i", "60", "-m", "second")
	assert.Equal(t, 1, second.wait(t))
	assert.Contains(t, second.output.String(), "already running")

	require.NoError(t, first.cmd.Process.Signal(syscall.SIGINT))
	assert.Equal(t, 0, first.wait(t))
}

func TestValidationExitCode(t *testing.T) {
	lockDir := t.TempDir()

	tooSmall := start(t, lockDir, "-d", setupTestRepo(t), "-i", "5")
	assert.Equal(t, 2, tooSmall.wait(t))
	assert.Contains(t, tooSmall.output.String(), "smaller than 10 seconds")

	notRepo := start(t, lockDir, "-d", t.TempDir())
	assert.Equal(t, 2, notRepo.wait(t))
}

func TestRecoveryAfterCrash(t *testing.T) {
	repo := setupTestRepo(t)
	lockDir := t.TempDir()

	crashed := start(t, lockDir, "-d", repo, "-i", "10", "-m", "lost")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "wip.txt"), []byte("wip\n"), 0o644))
	waitForCommits(t, repo, reservedBranch, 1)
	require.NoError(t, crashed.cmd.Process.Kill())
	_ = crashed.cmd.Wait()

	assert.Equal(t, reservedBranch, runGit(t, repo, "rev-parse", "--abbrev-ref", "HEAD"))

	refused := start(t, lockDir, "-d", repo, "-m", "again")
	assert.Equal(t, 1, refused.wait(t))
	assert.Contains(t, refused.output.String(), "still on a "+reservedBranch+" branch")

	runGit(t, repo, "checkout", "master")

	resumed := start(t, lockDir, "-d", repo, "-i", "10", "-m", "recovered")
	require.Eventually(t, func() bool {
		return strings.Contains(resumed.output.String(), "Monitoring")
	}, 10*time.Second, 100*time.Millisecond)
	require.NoError(t, resumed.cmd.Process.Signal(syscall.SIGINT))
	assert.Equal(t, 0, resumed.wait(t), resumed.output.String())

	archived := runGit(t, repo, "branch", "--list", "autoCommits/*")
	assert.NotEmpty(t, archived, "the abandoned snapshots are archived")
}
