package schema

import (
	"sort"
	"strings"
)

type DiffOptions struct {
	// CaseSensitive compares table and column names verbatim. When false
	// names are folded to lower case first, matching engines whose default
	// collation ignores case.
	CaseSensitive bool
}

// Diff computes, for every table of def in order, what the snapshot lacks.
// It is pure: the same inputs always give an equal result and neither
// input is modified.
func Diff(def *Definition, snap *Snapshot, opts DiffOptions) *SchemaDiff {
	fold := func(s string) string {
		if opts.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}

	// Names that fold together (Users and users) resolve to an exact-case
	// match first, then to the lowest name in byte order.
	live := make([]string, 0, len(snap.Tables)+len(snap.Errors))
	exact := make(map[string]bool, cap(live))
	for name := range snap.Tables {
		live = append(live, name)
		exact[name] = true
	}
	for name := range snap.Errors {
		live = append(live, name)
		exact[name] = true
	}
	sort.Strings(live)
	liveTables := make(map[string]string, len(live))
	for _, name := range live {
		if _, taken := liveTables[fold(name)]; !taken {
			liveTables[fold(name)] = name
		}
	}
	lookup := func(name string) (string, bool) {
		if exact[name] {
			return name, true
		}
		liveName, ok := liveTables[fold(name)]
		return liveName, ok
	}

	out := &SchemaDiff{Tables: make([]TableDiff, 0, len(def.Tables))}
	for _, want := range def.Tables {
		td := TableDiff{Table: want.Name}

		if snap.ListErr != nil {
			td.ReadErr = snap.ListErr
			out.Tables = append(out.Tables, td)
			continue
		}

		liveName, ok := lookup(want.Name)
		if !ok {
			td.TableMissing = true
			out.Tables = append(out.Tables, td)
			continue
		}
		if err, bad := snap.Errors[liveName]; bad {
			td.ReadErr = err
			out.Tables = append(out.Tables, td)
			continue
		}

		have := make(map[string]bool, len(snap.Tables[liveName]))
		for _, c := range snap.Tables[liveName] {
			have[fold(c)] = true
		}
		for _, c := range want.Columns {
			if have[fold(c)] {
				td.PresentColumns = append(td.PresentColumns, c)
			} else {
				td.MissingColumns = append(td.MissingColumns, c)
			}
		}
		out.Tables = append(out.Tables, td)
	}
	return out
}
