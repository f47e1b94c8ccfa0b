package executor

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/dbschema"
)

// taskDef is one task's merged definition: the implicit
// `{runtime: {table, schema}}` default, overlaid with whatever a
// sibling `<stem>.yaml` sidecar declares (original_source's
// `__load_yaml_metadata`).
type taskDef struct {
	Mode            string
	Materialization string
	Table           *dbschema.RawTable
	ColumnOrder     dbschema.ColumnOrder
}

// loadSidecar renders and decodes relDir/stem.yaml if it exists,
// relative to e.ModelDir. A missing sidecar is not an error: the task
// definition is then just the implicit runtime default.
func (e *Executor) loadSidecar(relDir, stem string, vars map[string]interface{}) (taskDef, error) {
	var def taskDef

	sidecarRel := filepath.Join(relDir, stem+".yaml")
	sidecarPath := filepath.Join(e.ModelDir, sidecarRel)
	if _, err := os.Stat(sidecarPath); err != nil {
		return def, nil
	}

	rendered, err := e.Render.RenderFile(sidecarRel, vars)
	if err != nil {
		return def, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(rendered), &root); err != nil {
		return def, dbderrors.Wrap(dbderrors.KindInvalidModel, err, "parse "+sidecarPath)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(rendered), &doc); err != nil {
		return def, dbderrors.Wrap(dbderrors.KindInvalidModel, err, "parse "+sidecarPath)
	}

	if proc, ok := doc["process"].(map[string]interface{}); ok {
		if m, ok := proc["mode"].(string); ok {
			def.Mode = m
		}
		if m, ok := proc["materialization"].(string); ok {
			def.Materialization = m
		}
	}

	if rawTableMap, ok := doc["table"].(map[string]interface{}); ok {
		raw, err := dbschema.DecodeRawTable(rawTableMap)
		if err != nil {
			return def, dbderrors.Wrap(dbderrors.KindInvalidModel, err, "decode table in "+sidecarPath)
		}
		def.Table = &raw
		def.ColumnOrder = mappingKeysInOrder(&root, "table", "columns")
	}

	return def, nil
}

// mappingKeysInOrder walks a YAML document node through a path of
// nested mapping keys and returns the final mapping's keys in their
// original file order - the detail a generic map[string]interface{}
// decode throws away (spec.md invariant 3: DDL column order).
func mappingKeysInOrder(doc *yaml.Node, path ...string) []string {
	if doc == nil || len(doc.Content) == 0 {
		return nil
	}
	node := doc.Content[0]
	for _, key := range path {
		node = findMappingValue(node, key)
		if node == nil {
			return nil
		}
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

func findMappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
