package executor

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/render"
	"github.com/dbd-project/dbd/internal/sqlanalyzer"
	"github.com/dbd-project/dbd/internal/task"
)

// dataFileExtensions are loader.ReadDataFile's supported table formats
// (spec.md §4.6.1's extension table).
var dataFileExtensions = map[string]bool{
	".csv": true, ".json": true, ".parquet": true,
	".xls": true, ".xlsx": true, ".xlsm": true, ".xlsb": true,
	".odf": true, ".ods": true, ".odt": true,
}

// statementSplit matches a semicolon at the end of a line (including the
// last line of the script), the original_source `.ddl` splitting rule (a
// bare `;` mid-expression, inside a string literal or comment, never
// falls at end-of-line in well-formed DDL scripts).
var statementSplit = regexp.MustCompile(`;[ \t]*(?:\r?\n|$)`)

// dataTaskBuild accumulates one data task's file entries across
// possibly several physical files sharing the same (schema, stem).
type dataTaskBuild struct {
	schemaDir string
	stem      string
	def       taskDef
	files     []string
}

// Populate crawls e.ModelDir and builds the task.Graph (spec.md
// §4.6.1-§4.6.3), classifying every file by lowercase extension and
// merging each table-backed task's optional `<stem>.yaml` sidecar.
//
// Grounded on model_executor.py's `__populate_model_from_directory`.
func (e *Executor) Populate() (*task.Graph, error) {
	g := task.NewGraph()
	dataBuilds := map[string]*dataTaskBuild{}
	dataOrder := []string{}

	err := filepath.WalkDir(e.ModelDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(e.ModelDir, path)
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" {
			return nil // consumed as a sidecar alongside its stem's task
		}

		schemaDir := parentSchema(rel)
		stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))

		switch {
		case ext == ".sql":
			return e.addSQLTask(g, schemaDir, stem, rel)
		case ext == ".ddl":
			return e.addDDLTask(g, schemaDir, stem, rel)
		case ext == ".ref" || ext == ".url" || dataFileExtensions[ext]:
			vars := render.BuildContext(displaySchema(schemaDir), stem, e.Session)
			id := task.GenerateID(stem, displaySchema(schemaDir))
			build, ok := dataBuilds[id]
			if !ok {
				def, err := e.loadSidecar(schemaDir, stem, vars)
				if err != nil {
					return err
				}
				build = &dataTaskBuild{schemaDir: schemaDir, stem: stem, def: def}
				dataBuilds[id] = build
				dataOrder = append(dataOrder, id)
			}
			entries, err := e.resolveDataFileEntries(rel, ext, vars)
			if err != nil {
				return err
			}
			build.files = append(build.files, entries...)
			return nil
		default:
			return nil // not a recognized model file
		}
	})
	if err != nil {
		return nil, err
	}

	for _, id := range dataOrder {
		b := dataBuilds[id]
		t, err := buildDataTask(b)
		if err != nil {
			return nil, err
		}
		if err := addTableTask(g, t); err != nil {
			return nil, err
		}
	}

	e.graph = g
	return g, nil
}

// parentSchema returns rel's immediate parent directory name, or "" if
// rel is a top-level model file (no schema). Deeper nesting only ever
// contributes its immediate parent, matching the Python crawl's
// `os.path.basename(os.path.dirname(path))`.
func parentSchema(rel string) string {
	dir := filepath.Dir(rel)
	if dir == "." {
		return ""
	}
	return filepath.Base(dir)
}

// displaySchema maps the empty (top-level) schema to the sentinel the
// template context and task IDs use.
func displaySchema(schemaDir string) string {
	if schemaDir == "" {
		return task.TopLevelSchemaName
	}
	return schemaDir
}

func (e *Executor) addSQLTask(g *task.Graph, schemaDir, stem, rel string) error {
	vars := render.BuildContext(displaySchema(schemaDir), stem, e.Session)
	def, err := e.loadSidecar(schemaDir, stem, vars)
	if err != nil {
		return err
	}
	rendered, err := e.Render.RenderFile(rel, vars)
	if err != nil {
		return err
	}

	t := &task.Task{
		Kind:         task.KindSQL,
		Target:       stem,
		TargetSchema: schemaDir,
		SQLText:      sqlanalyzer.StripComments(rendered),
		Mode:         resolveMode(def.Mode),
	}
	t.Materialization = resolveMaterialization(def.Materialization)
	if def.Table != nil {
		tbl, err := dbschema.FromCode(stem, schemaDir, *def.Table, def.ColumnOrder)
		if err != nil {
			return dbderrors.Wrap(dbderrors.KindInvalidModel, err, "build table for "+rel)
		}
		t.Table = tbl
	}
	return addTableTask(g, t)
}

func (e *Executor) addDDLTask(g *task.Graph, schemaDir, stem, rel string) error {
	vars := render.BuildContext(displaySchema(schemaDir), stem, e.Session)
	rendered, err := e.Render.RenderFile(rel, vars)
	if err != nil {
		return err
	}

	target := stem
	if target != task.TargetProlog && target != task.TargetEpilog {
		// Only "prolog"/"epilog" DDL files become tasks; a .ddl file
		// with any other stem is skipped as a non-task model file and
		// never runs, mirroring the Python crawl's behavior for
		// unrecognized stems under .ddl.
		return nil
	}

	id := task.GenerateID(target, displaySchema(schemaDir))
	if _, exists := g.DDLTasks[id]; exists {
		return dbderrors.New(dbderrors.KindInvalidModel, "duplicate DDL task target "+id)
	}

	g.DDLTasks[id] = &task.Task{
		Kind:         task.KindDDL,
		Target:       target,
		TargetSchema: schemaDir,
		Statements:   splitStatements(rendered),
	}
	return nil
}

func splitStatements(sql string) []string {
	stripped := sqlanalyzer.StripComments(sql)
	parts := statementSplit.Split(stripped, -1)
	var out []string
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func addTableTask(g *task.Graph, t *task.Task) error {
	id := t.ID()
	if _, exists := g.Tasks[id]; exists {
		return dbderrors.New(dbderrors.KindInvalidModel, "duplicate task target "+id)
	}
	g.Tasks[id] = t
	return nil
}

func resolveMode(raw string) task.Mode {
	switch task.Mode(raw) {
	case task.ModeTruncate:
		return task.ModeTruncate
	default:
		return task.ModeDrop
	}
}

func resolveMaterialization(raw string) task.Materialization {
	switch task.Materialization(raw) {
	case task.MaterializeView:
		return task.MaterializeView
	default:
		return task.MaterializeTable
	}
}

func buildDataTask(b *dataTaskBuild) (*task.Task, error) {
	t := &task.Task{
		Kind:         task.KindData,
		Target:       b.stem,
		TargetSchema: b.schemaDir,
		DataFiles:    b.files,
		Mode:         resolveMode(b.def.Mode),
	}
	if b.def.Table != nil {
		tbl, err := dbschema.FromCode(b.stem, b.schemaDir, *b.def.Table, b.def.ColumnOrder)
		if err != nil {
			return nil, dbderrors.Wrap(dbderrors.KindInvalidModel, err, "build table for "+b.stem)
		}
		t.Table = tbl
	}
	return t, nil
}
