// Package topo queries the source database for its schema topology through vsql.
package topo

import (
	"bufio"
	"bytes"
	"context"
	"unicode/utf8"

	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/log"
	"github.com/percona/vertica-replicate/util"
)

// SchemasQuery lists user schemas in name order.
const SchemasQuery = "SELECT schema_name FROM schemata WHERE NOT is_system_schema ORDER BY schema_name;"

// vsqlOutputFlags print bare unaligned rows and skip the vsqlrc file.
var vsqlOutputFlags = []string{"-CAtX"} //nolint:gochecknoglobals

// VSQL discovers schemas by running the vsql client.
type VSQL struct {
	Runner util.Runner
	Path   string
	// Args are connection options placed before the query flags.
	Args []string
}

// Command returns the vsql invocation that lists schemas.
func (v *VSQL) Command() util.Command {
	args := make([]string, 0, len(v.Args)+len(vsqlOutputFlags)+2)
	args = append(args, v.Args...)
	args = append(args, vsqlOutputFlags...)
	args = append(args, "-c", SchemasQuery)

	return util.Command{Path: v.Path, Args: args}
}

// Schemas returns the non-system schema names in the order vsql prints them.
// A non-zero vsql exit is reported as [*util.ExitError].
func (v *VSQL) Schemas(ctx context.Context) ([]string, error) {
	cmd := v.Command()

	lg := log.Ctx(ctx).With(log.Scope("topo"))
	lg.Debug("Listing schemas: " + cmd.String())

	res, err := v.Runner.Run(ctx, cmd)
	if err != nil {
		return nil, errors.Wrap(err, "vsql")
	}

	if res.ExitCode != 0 {
		out := res.Stderr
		if len(bytes.TrimSpace(out)) == 0 {
			out = res.Combined
		}

		return nil, errors.Wrap(&util.ExitError{
			Code:   res.ExitCode,
			Output: util.Oneline(string(out)),
		}, "vsql")
	}

	schemas, err := ParseSchemas(res.Stdout)
	if err != nil {
		return nil, errors.Wrap(err, "vsql output")
	}

	lg.Debugf("Found %d schemas", len(schemas))

	return schemas, nil
}

// ParseSchemas splits vsql output into one schema name per line. The final
// line break does not produce an empty name. Output must be ASCII.
func ParseSchemas(out []byte) ([]string, error) {
	for i, b := range out {
		if b >= utf8.RuneSelf {
			return nil, errors.Errorf("non-ASCII byte 0x%02x at offset %d", b, i)
		}
	}

	var schemas []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		schemas = append(schemas, string(bytes.TrimSuffix(scanner.Bytes(), []byte("\r"))))
	}

	err := scanner.Err()
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	return schemas, nil
}
