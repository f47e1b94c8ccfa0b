package executor

import (
	"path/filepath"
	"strings"
)

// resolveDataFileEntries turns one physical model file into the list
// of DataFiles entries it contributes:
//   - a plain data file (csv/json/parquet/excel) contributes itself,
//     as an absolute path.
//   - a `.url` file contributes one entry per non-blank rendered line,
//     each an HTTP(S) URL (original_source's download_file helper).
//   - a `.ref` file contributes one entry per non-blank rendered line,
//     each either a URL or a path resolved relative to the model root
//     (original_source's `resolve_reference`), not the .ref file's own
//     directory or the current task's schema directory.
func (e *Executor) resolveDataFileEntries(rel, ext string, vars map[string]interface{}) ([]string, error) {
	absPath := filepath.Join(e.ModelDir, rel)

	if ext != ".ref" && ext != ".url" {
		return []string{absPath}, nil
	}

	rendered, err := e.Render.RenderFile(rel, vars)
	if err != nil {
		return nil, err
	}

	var entries []string
	for _, line := range strings.Split(rendered, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if isURL(line) {
			entries = append(entries, line)
			continue
		}
		entries = append(entries, filepath.Join(e.ModelDir, line))
	}
	return entries, nil
}

func isURL(s string) bool {
	return strings.Contains(s, "://")
}
