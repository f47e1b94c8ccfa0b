package task

import (
	"strings"

	"github.com/dbd-project/dbd/internal/dbderrors"
)

// topologicalSort performs a topological sort on items based on their
// dependencies using depth-first search (DFS). It returns the sorted
// items in dependency order, or nil plus the IDs forming one detected
// cycle, in cycle order (A depends on B depends on ... depends on A).
//
// The algorithm uses DFS with three-color marking (unvisited, visiting,
// visited) to detect cycles and ensure each node is processed only once.
//
// Adapted from the teacher's schema/tsort.go: same generic signature and
// DFS shape, reused here for task dependency ordering instead of table
// rename/DDL-statement ordering. Unlike the teacher (which only reports
// "a cycle exists" by returning an empty slice, leaving its callers to
// silently fall back to input order), this tracks the DFS stack so a
// caller can name the cycle's participants in an error, per spec §8 S5.
func topologicalSort[T any](items []T, dependencies map[string][]string, getID func(T) string) ([]T, []string) {
	var sorted []T
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	itemMap := make(map[string]T)
	var stack []string
	var cycle []string

	for _, item := range items {
		itemMap[getID(item)] = item
	}

	var visit func(string) bool
	visit = func(id string) bool {
		if visiting[id] {
			for i, s := range stack {
				if s == id {
					cycle = append([]string{}, stack[i:]...)
					break
				}
			}
			return false
		}
		if visited[id] {
			return true
		}

		visiting[id] = true
		stack = append(stack, id)
		for _, dep := range dependencies[id] {
			if _, exists := itemMap[dep]; exists {
				if !visit(dep) {
					return false
				}
			}
		}
		stack = stack[:len(stack)-1]
		visiting[id] = false
		visited[id] = true

		if item, exists := itemMap[id]; exists {
			sorted = append(sorted, item)
		}
		return true
	}

	for _, item := range items {
		id := getID(item)
		if !visited[id] {
			if !visit(id) {
				return nil, cycle
			}
		}
	}
	return sorted, nil
}

// Graph is the full task set discovered from a model directory crawl:
// table-backed tasks (data/SQL) plus schema and global prolog/epilog DDL
// scripts, keyed by task ID.
type Graph struct {
	Tasks    map[string]*Task
	DDLTasks map[string]*Task
}

// NewGraph returns an empty Graph ready for population during the
// directory crawl (internal/executor).
func NewGraph() *Graph {
	return &Graph{Tasks: map[string]*Task{}, DDLTasks: map[string]*Task{}}
}

// dependencyResolver is supplied by the caller because Task.DependsOn
// needs a task's rendered SQL table references, which the task package
// itself has no way to compute (that's sqlanalyzer.Tables, run against
// a task's already-rendered SQLText by the executor).
type dependencyResolver func(t *Task) ([]string, error)

// OrderByDependencies computes execution order across every data/SQL
// task, places independent (no incoming or outgoing edge) tasks first,
// and splices schema and global prolog/epilog DDL tasks around that
// order.
//
// The returned order lists dependents before the dependencies they need
// created first - callers that create tables must iterate it in
// reverse; callers that drop tables iterate it forward, so a dependent
// table's rows/constraints are gone before its dependency is touched.
//
// Grounded line-for-line on
// original_source/dbd/executors/model_executor.py's
// __order_tasks_by_dependencies, including the "independent tasks
// first" non-topological-sort quirk and the prolog/epilog splice rules
// (spec.md §9 Open Questions: kept as-is, see DESIGN.md).
func (g *Graph) OrderByDependencies(resolveSQLRefs dependencyResolver) ([]*Task, error) {
	edges := map[string][]string{}
	var items []*Task
	for id, t := range g.Tasks {
		items = append(items, t)
		var sqlRefs []string
		if resolveSQLRefs != nil {
			refs, err := resolveSQLRefs(t)
			if err != nil {
				return nil, err
			}
			sqlRefs = refs
		}
		deps, err := t.DependsOn(sqlRefs)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if _, ok := g.Tasks[dep]; ok {
				edges[id] = append(edges[id], dep)
			}
			// Unresolved dependencies are assumed to already exist in
			// the target database and are silently dropped, matching
			// __find_task_by_fully_qualified_target_name's behavior.
		}
	}

	// A task participates in the graph only if it has an outgoing or
	// incoming dependency edge, mirroring networkx.DiGraph.add_edges_from
	// (which never creates a node for an isolated item). Everything else
	// is "independent" and bypasses topologicalSort entirely.
	inGraph := map[string]bool{}
	for from, tos := range edges {
		inGraph[from] = true
		for _, to := range tos {
			inGraph[to] = true
		}
	}
	var connected, independent []*Task
	for _, t := range items {
		if inGraph[t.ID()] {
			connected = append(connected, t)
		} else {
			independent = append(independent, t)
		}
	}

	// topologicalSort appends each item only after its dependencies, so
	// its output already reads dependency-before-dependent - the direct
	// creation order. Python's model_executor builds dag_order the
	// opposite way (nx.topological_sort walks edges task->dependency and
	// yields the dependent first), then reverses it at creation time.
	// Reversing here instead keeps dag_order (and the splice rules below,
	// ported from the same variable) in the exact shape model_executor.py
	// expects.
	dependencyFirst, cycle := topologicalSort(connected, edges, func(t *Task) string { return t.ID() })
	if cycle != nil {
		return nil, dbderrors.New(dbderrors.KindInvalidModel, "cycle: "+strings.Join(cycle, ","))
	}
	sorted := reverseTasks(dependencyFirst)

	// dagOrder is dependents-first, independent tasks first: forward
	// iteration is correct DROP order (drop a dependent before the table
	// it references); CREATE order is its reverse (see
	// CreateOrder below, and DESIGN.md's Open Question note).
	dagOrder := append(append([]*Task{}, independent...), sorted...)
	return g.spliceDDL(dagOrder), nil
}

// CreateOrder reverses a dagOrder slice (as returned by
// OrderByDependencies) into dependency-before-dependent order, the
// sequence internal/executor creates/materializes tasks in.
func CreateOrder(dagOrder []*Task) []*Task {
	return reverseTasks(dagOrder)
}

func reverseTasks(in []*Task) []*Task {
	out := make([]*Task, len(in))
	for i, t := range in {
		out[len(in)-1-i] = t
	}
	return out
}

// spliceDDL removes the global prolog/epilog (schema "*") from DDLTasks,
// inserts every remaining schema-level epilog just before its schema's
// first task and every schema-level prolog just after its schema's last
// task, then appends the global prolog to the very end and the global
// epilog to the very beginning.
func (g *Graph) spliceDDL(order []*Task) []*Task {
	globalPrologID := GenerateID(TargetProlog, TopLevelSchemaName)
	globalEpilogID := GenerateID(TargetEpilog, TopLevelSchemaName)
	globalProlog := g.DDLTasks[globalPrologID]
	globalEpilog := g.DDLTasks[globalEpilogID]

	var epilogs, prologs []*Task
	for _, t := range g.DDLTasks {
		if t.ID() == globalPrologID || t.ID() == globalEpilogID {
			continue
		}
		switch t.Target {
		case TargetEpilog:
			epilogs = append(epilogs, t)
		case TargetProlog:
			prologs = append(prologs, t)
		}
	}
	// Map iteration order is random; sort by schema for a deterministic
	// splice when more than one schema has an epilog/prolog.
	sortBySchema(epilogs)
	sortBySchema(prologs)

	// All epilogs are spliced in before any prolog is considered, matching
	// the Python original's two separate for-loops (epilog placement can
	// shift indices that subsequent prolog placement relies on).
	for _, t := range epilogs {
		idx := firstTaskForSchema(order, t.TargetSchema)
		if idx >= 0 {
			order = insertAt(order, idx, t)
		} else {
			order = insertAt(order, 0, t)
		}
	}
	for _, t := range prologs {
		idx := lastTaskForSchema(order, t.TargetSchema)
		if idx >= 0 {
			order = insertAt(order, idx+1, t)
		} else {
			order = append(order, t)
		}
	}

	if globalProlog != nil {
		order = append(order, globalProlog)
	}
	if globalEpilog != nil {
		order = insertAt(order, 0, globalEpilog)
	}
	return order
}

func sortBySchema(tasks []*Task) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j-1].TargetSchema > tasks[j].TargetSchema; j-- {
			tasks[j-1], tasks[j] = tasks[j], tasks[j-1]
		}
	}
}

func firstTaskForSchema(tasks []*Task, schema string) int {
	for i, t := range tasks {
		if t.TargetSchema == schema {
			return i
		}
	}
	return -1
}

func lastTaskForSchema(tasks []*Task, schema string) int {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].TargetSchema == schema {
			return i
		}
	}
	return -1
}

func insertAt(tasks []*Task, idx int, t *Task) []*Task {
	out := make([]*Task, 0, len(tasks)+1)
	out = append(out, tasks[:idx]...)
	out = append(out, t)
	out = append(out, tasks[idx:]...)
	return out
}
