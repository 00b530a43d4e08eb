package util_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percona/vertica-replicate/util"
)

func TestOneline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "fatal: lock held", "fatal: lock held"},
		{"trailing newline", "fatal: lock held\n", "fatal: lock held"},
		{"crlf", "line one\r\nline two\r\n", "line one line two"},
		{"tabs and newlines run", "a\t\n\tb", "a b"},
		{"spaces kept", "a  b\nc", "a  b c"},
		{"invalid utf-8 kept", "bad \xff\xfe byte\n", "bad \xff\xfe byte"},
		{"multibyte", "schéma\tmanquant", "schéma manquant"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, util.Oneline(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abcdef", util.Truncate("abcdef", 0))
	assert.Equal(t, "abcdef", util.Truncate("abcdef", 6))
	assert.Equal(t, "abc...(truncated)", util.Truncate("abcdef", 3))

	// "é" is two bytes; the cut backs off to its start
	assert.Equal(t, "ab...(truncated)", util.Truncate("abécd", 3))
	assert.Equal(t, "abé...(truncated)", util.Truncate("abécd", 4))
}

func TestShellsplit(t *testing.T) {
	t.Parallel()

	words, err := util.Shellsplit(`-U dbadmin -h 'db host' -w "p w"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"-U", "dbadmin", "-h", "db host", "-w", "p w"}, words)

	assert.Equal(t, words, mustSplit(t, util.Shelljoin(words)))

	_, err = util.Shellsplit(`-h 'unterminated`)
	require.Error(t, err)
}

func mustSplit(t *testing.T, s string) []string {
	t.Helper()

	words, err := util.Shellsplit(s)
	require.NoError(t, err)

	return words
}

func TestExecRunner(t *testing.T) {
	t.Parallel()

	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		res, err := util.ExecRunner{}.Run(context.Background(), util.Command{
			Path: sh,
			Args: []string{"-c", "echo out; echo err >&2"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "out\n", string(res.Stdout))
		assert.Equal(t, "err\n", string(res.Stderr))
		assert.Len(t, res.Combined, len("out\nerr\n"))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		t.Parallel()

		res, err := util.ExecRunner{}.Run(context.Background(), util.Command{
			Path: sh,
			Args: []string{"-c", "echo 'fatal: lock held' >&2; exit 2"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.ExitCode)
		assert.Equal(t, "fatal: lock held\n", string(res.Combined))
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()

		_, err := util.ExecRunner{}.Run(context.Background(), util.Command{
			Path: "/nonexistent/vbr",
		})
		require.Error(t, err)
	})
}

func TestExitError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "exit status 3", (&util.ExitError{Code: 3}).Error())
	assert.Equal(t, "exit status 3: permission denied",
		(&util.ExitError{Code: 3, Output: "permission denied"}).Error())
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	c := util.Command{Path: "/opt/vertica/bin/vbr", Args: []string{"-t", "replicate", "-c", "my conf.ini"}}
	assert.Equal(t, `/opt/vertica/bin/vbr -t replicate -c 'my conf.ini'`, c.String())
}
