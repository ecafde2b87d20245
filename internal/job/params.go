package job

import "strings"

// reservedArgsKey and reservedKwargsKey are the two parameter keys the job
// runtime contract reserves: args is spread as positional arguments (and
// takes precedence over positional matching), kwargs is merged last.
const (
	reservedArgsKey   = "args"
	reservedKwargsKey = "kwargs"
)

// RouteParams extracts the parameters a task addresses to shortName,
// accepting either of two equivalent encodings that round-trip into the
// same internal form:
//
//   - dotted form:  {"shortName.param": value}
//   - nested form:  {"shortName": {"param": value}}
//
// Parameters targeted at a different short name are left untouched in the
// source task and simply don't appear in the result. If a parameter is
// present in both the nested map and the dotted form, the dotted form
// wins.
func RouteParams(t map[string]any, shortName string) map[string]any {
	routed := map[string]any{}

	if nested, ok := t[shortName]; ok {
		if m, ok := nested.(map[string]any); ok {
			for k, v := range m {
				routed[k] = v
			}
		}
	}

	prefix := shortName + "."
	for k, v := range t {
		if after, ok := strings.CutPrefix(k, prefix); ok {
			routed[after] = v
		}
	}

	return routed
}
