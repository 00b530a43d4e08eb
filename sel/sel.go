// Package sel resolves the include/exclude object lists of a replication run.
package sel

import (
	"context"
	"strings"

	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/util"
	"github.com/percona/vertica-replicate/validate"
)

// Separator joins object identifiers. Schema names never contain it.
const Separator = ","

// Request is what the operator asked to replicate.
type Request struct {
	// AllSchemas starts the include list with every non-system schema.
	AllSchemas bool   `json:"allSchemas"`
	Include    string `json:"include"    validate:"required_unless=AllSchemas true"`
	Exclude    string `json:"exclude"`
}

// Validate rejects a request that neither selects all schemas nor includes anything.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err != nil {
		return errors.Classify(errors.Wrap(err, "must specify all schemas or objects to include"),
			errors.ErrInvalidRequest)
	}

	return nil
}

// Scope is the resolved object lists written to the vbr configuration.
type Scope struct {
	Include string
	Exclude string
}

// SchemaSource lists the non-system schemas of the database in its own order.
type SchemaSource interface {
	Schemas(ctx context.Context) ([]string, error)
}

// SchemaSourceFunc adapts a function to [SchemaSource].
type SchemaSourceFunc func(ctx context.Context) ([]string, error)

func (f SchemaSourceFunc) Schemas(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// DiscoveryError reports that the schema list could not be obtained.
type DiscoveryError struct {
	Cause error
}

func (e *DiscoveryError) Error() string {
	return "discover schemas: " + e.Cause.Error()
}

func (e *DiscoveryError) Unwrap() []error {
	return []error{e.Cause, errors.ErrDiscovery}
}

// ExitCode returns the exit status of the discovery process, if it ran.
func (e *DiscoveryError) ExitCode() (int, bool) {
	var exitErr *util.ExitError
	if errors.As(e.Cause, &exitErr) {
		return exitErr.Code, true
	}

	return 0, false
}

// Diagnostic returns the condensed output of the discovery process, if any.
func (e *DiscoveryError) Diagnostic() string {
	var exitErr *util.ExitError
	if errors.As(e.Cause, &exitErr) {
		return exitErr.Output
	}

	return ""
}

// Resolve builds the Scope of req. With AllSchemas set, src is queried once
// and its schemas, in the order returned, precede req.Include. Nothing is
// deduplicated or sorted.
func Resolve(ctx context.Context, req Request, src SchemaSource) (Scope, error) {
	err := req.Validate()
	if err != nil {
		return Scope{}, err
	}

	schemaList := ""

	if req.AllSchemas {
		schemas, err := src.Schemas(ctx)
		if err != nil {
			return Scope{}, &DiscoveryError{Cause: err}
		}

		schemaList = strings.TrimSpace(strings.Join(schemas, Separator))
		if req.Include != "" {
			schemaList += Separator
		}
	}

	return Scope{
		Include: schemaList + req.Include,
		Exclude: req.Exclude,
	}, nil
}

// Split returns the identifiers of an object list. An empty list has none.
func Split(list string) []string {
	if list == "" {
		return nil
	}

	return strings.Split(list, Separator)
}
