// Package vbrconf reads and rewrites the object scope of a vbr configuration file.
//
// The file is an INI document. Only the [Misc] section's scope keys are
// changed; every other section, key and comment is written back as loaded.
package vbrconf

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/ini.v1"

	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/log"
	"github.com/percona/vertica-replicate/sel"
)

// Section and keys of the object scope.
const (
	MiscSection       = "Misc"
	IncludeObjectsKey = "includeObjects"
	ExcludeObjectsKey = "excludeObjects"
	// LegacyObjectsKey is the single-list key of older configurations.
	LegacyObjectsKey = "objects"
)

// DefaultFileMode applies to a configuration file created by [Apply].
const DefaultFileMode fs.FileMode = 0o600

// loadOptions keep values literal so vbr reads back what it wrote. A trailing
// backslash is part of the value, not a line continuation.
//
//nolint:gochecknoglobals
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
}

// unstorable are characters that make the INI writer quote a value.
const unstorable = "\r\n`"

// Layout tells which scope keys a [MiscSection] holds.
type Layout int

const (
	// LayoutNone has no scope keys.
	LayoutNone Layout = iota
	// LayoutLegacy has only the single objects key.
	LayoutLegacy
	// LayoutSplit has includeObjects and/or excludeObjects.
	LayoutSplit
)

func (l Layout) String() string {
	switch l {
	case LayoutNone:
		return "none"
	case LayoutLegacy:
		return "legacy"
	case LayoutSplit:
		return "split"
	}

	return "unknown"
}

// Stored is the scope found in a configuration file. A nil list means the key is absent.
type Stored struct {
	Layout  Layout
	Include *string
	Exclude *string
}

// Scope returns the stored lists with absent keys as empty strings.
func (s Stored) Scope() sel.Scope {
	var scope sel.Scope
	if s.Include != nil {
		scope.Include = *s.Include
	}

	if s.Exclude != nil {
		scope.Exclude = *s.Exclude
	}

	return scope
}

// Read returns the scope stored at path. A missing file has [LayoutNone].
func Read(path string) (Stored, error) {
	f, _, err := load(path)
	if err != nil {
		return Stored{}, err
	}

	sec, err := f.GetSection(MiscSection)
	if err != nil {
		return Stored{}, nil //nolint:nilerr
	}

	return readStored(sec), nil
}

// Apply writes scope into the file at path: the legacy objects key is removed
// and includeObjects/excludeObjects are set, empty values included. A missing
// file is created.
//
// Surrounding whitespace of each list is trimmed, as vbr's own parser does. A
// list containing a line break or a backtick is rejected and the file is left
// untouched.
func Apply(ctx context.Context, path string, scope sel.Scope) error {
	scope, err := normalize(scope)
	if err != nil {
		return err
	}

	f, mode, err := load(path)
	if err != nil {
		return err
	}

	sec := f.Section(MiscSection)
	prev := readStored(sec)

	migrate(sec, scope)

	var buf bytes.Buffer

	_, err = f.WriteTo(&buf)
	if err != nil {
		return errors.Classify(errors.Wrap(err, "render"), errors.ErrFormat)
	}

	err = os.WriteFile(path, buf.Bytes(), mode)
	if err != nil {
		return errors.Classify(errors.Wrapf(err, "write %s", path), errors.ErrIO)
	}

	lg := log.Ctx(ctx).With(log.Scope("vbrconf"), log.Path(path))
	if prev.Layout == LayoutLegacy {
		lg.Infof("Migrated legacy %q key to %q/%q", LegacyObjectsKey, IncludeObjectsKey, ExcludeObjectsKey)
	}

	lg.Debugf("Wrote %s", humanize.Bytes(uint64(buf.Len())))

	return nil
}

// load parses the file at path, returning an empty document when it does not exist.
func load(path string) (*ini.File, fs.FileMode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ini.Empty(loadOptions), DefaultFileMode, nil
		}

		return nil, 0, errors.Classify(errors.Wrapf(err, "read %s", path), errors.ErrIO)
	}

	mode := DefaultFileMode

	info, err := os.Stat(path)
	if err == nil {
		mode = info.Mode().Perm()
	}

	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, 0, errors.Classify(errors.Wrapf(err, "parse %s", path), errors.ErrFormat)
	}

	return f, mode, nil
}

func readStored(sec *ini.Section) Stored {
	var s Stored

	switch {
	case sec.HasKey(IncludeObjectsKey) || sec.HasKey(ExcludeObjectsKey):
		s.Layout = LayoutSplit
		s.Include = value(sec, IncludeObjectsKey)
		s.Exclude = value(sec, ExcludeObjectsKey)
	case sec.HasKey(LegacyObjectsKey):
		s.Layout = LayoutLegacy
		s.Include = value(sec, LegacyObjectsKey)
	}

	return s
}

// normalize returns scope as it will read back from the file.
func normalize(scope sel.Scope) (sel.Scope, error) {
	for _, v := range []struct {
		key string
		val *string
	}{
		{IncludeObjectsKey, &scope.Include},
		{ExcludeObjectsKey, &scope.Exclude},
	} {
		if strings.ContainsAny(*v.val, unstorable) {
			return sel.Scope{}, errors.Classify(
				errors.Errorf("%s: value %q cannot be stored on one line", v.key, *v.val),
				errors.ErrInvalidRequest)
		}

		*v.val = strings.TrimSpace(*v.val)
	}

	return scope, nil
}

// migrate always leaves sec in [LayoutSplit].
func migrate(sec *ini.Section, scope sel.Scope) {
	sec.DeleteKey(LegacyObjectsKey)
	sec.Key(IncludeObjectsKey).SetValue(scope.Include)
	sec.Key(ExcludeObjectsKey).SetValue(scope.Exclude)
}

func value(sec *ini.Section, key string) *string {
	if !sec.HasKey(key) {
		return nil
	}

	v := sec.Key(key).Value()

	return &v
}
