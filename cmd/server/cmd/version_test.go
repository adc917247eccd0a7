package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setVersion(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
	Version, GitCommit, BuildDate = version, commit, date
}

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	setVersion(t, "1.0.0", "abc123", "2026-01-27T12:00:00Z")

	output := runRoot(t, "version")

	for _, expected := range []string{
		"PetMap Server",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-01-27T12:00:00Z",
		"Go version:",
		"Platform:",
	} {
		assert.Contains(t, output, expected)
	}
}

func TestVersionCommandDefaultValues(t *testing.T) {
	setVersion(t, "dev", "unknown", "unknown")

	output := runRoot(t, "version")

	assert.Contains(t, output, "Version:    dev")
	assert.Contains(t, output, "Git commit: unknown")
	assert.Contains(t, output, "Build date: unknown")
}

func TestVersionCommandHelp(t *testing.T) {
	output := runRoot(t, "version", "--help")

	assert.Contains(t, output, "Print the version number")
}
