package migrations

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// ledgerTable records applied migration files by name.
const ledgerTable = "schema_migrations"

// migration is one embedded SQL file.
type migration struct {
	name string // base file name, e.g. 001_trade_actions.sql
	sql  string
}

// load reads the non-empty .sql files of dir in lexical order.
func load(fsys fs.FS, dir string) ([]migration, error) {
	files, err := sqlFiles(fsys, dir)
	if err != nil {
		return nil, err
	}

	ms := make([]migration, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		ms = append(ms, migration{name: path.Base(file), sql: string(data)})
	}
	return ms, nil
}

// pending drops migrations already present in applied.
func pending(ms []migration, applied map[string]struct{}) []migration {
	out := ms[:0:0]
	for _, m := range ms {
		if _, ok := applied[m.name]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// sqlFiles lists the .sql files of dir in lexical order, as full paths.
func sqlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, dir+"/"+entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
