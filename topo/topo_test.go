package topo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/topo"
	"github.com/percona/vertica-replicate/util"
)

type fakeRunner struct {
	res  *util.Result
	err  error
	cmds []util.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd util.Command) (*util.Result, error) {
	f.cmds = append(f.cmds, cmd)

	return f.res, f.err
}

func TestParseSchemas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "public\n", []string{"public"}},
		{"no final newline", "public\nstore", []string{"public", "store"}},
		{"order kept", "store\npublic\nonline_sales\n", []string{"store", "public", "online_sales"}},
		{"crlf", "public\r\nstore\r\n", []string{"public", "store"}},
		{"blank line kept", "a\n\nb\n", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := topo.ParseSchemas([]byte(tt.out))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSchemasRejectsNonASCII(t *testing.T) {
	t.Parallel()

	_, err := topo.ParseSchemas([]byte("public\nventes_été\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-ASCII")
}

func TestVSQLCommand(t *testing.T) {
	t.Parallel()

	v := &topo.VSQL{Path: "/opt/vertica/bin/vsql", Args: []string{"-U", "dbadmin"}}

	assert.Equal(t, util.Command{
		Path: "/opt/vertica/bin/vsql",
		Args: []string{"-U", "dbadmin", "-CAtX", "-c", topo.SchemasQuery},
	}, v.Command())
}

func TestVSQLSchemas(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{res: &util.Result{Stdout: []byte("public\nsales\n")}}
	v := &topo.VSQL{Runner: runner, Path: "vsql"}

	schemas, err := v.Schemas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "sales"}, schemas)
	assert.Len(t, runner.cmds, 1)
}

func TestVSQLSchemasExitCode(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{res: &util.Result{
		ExitCode: 3,
		Stderr:   []byte("vsql: could not connect to server:\n\tConnection refused\n"),
	}}
	v := &topo.VSQL{Runner: runner, Path: "vsql"}

	_, err := v.Schemas(context.Background())
	require.Error(t, err)

	var exitErr *util.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "vsql: could not connect to server: Connection refused", exitErr.Output)
}

func TestVSQLSchemasNotStarted(t *testing.T) {
	t.Parallel()

	startErr := errors.New("start vsql: permission denied")
	v := &topo.VSQL{Runner: &fakeRunner{err: startErr}, Path: "vsql"}

	_, err := v.Schemas(context.Background())
	require.ErrorIs(t, err, startErr)
}
