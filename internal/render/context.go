package render

import "os"

// BuildContext assembles the variable set every dbd template is
// rendered against: the schema/table a model file belongs to, the
// session dict passed down from the CLI invocation (spec.md §2.3's
// profile/project vars), and the process environment, so a template
// can reach `{{ env.HOME }}` the way the Python original exposed
// os.environ.
func BuildContext(schema, table string, session map[string]interface{}) map[string]interface{} {
	env := make(map[string]interface{})
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	ctx := map[string]interface{}{
		"schema":  schema,
		"table":   table,
		"session": session,
		"env":     env,
	}
	return ctx
}
