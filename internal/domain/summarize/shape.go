package summarize

// Shape identifies which reduction applies to a payload.
type Shape string

const (
	ShapeError    Shape = "error"
	ShapeTeams    Shape = "teams"
	ShapeLeague   Shape = "league"
	ShapeSchedule Shape = "schedule"
	ShapeInjuries Shape = "injuries"
	ShapeGeneric  Shape = "generic"
	ShapeFallback Shape = "fallback"
)

// Detect classifies an upstream payload. Checks run in a fixed order and
// the first match wins; anything unrecognized is ShapeGeneric.
func Detect(payload map[string]any) Shape {
	switch {
	case isList(payload["teams"]):
		return ShapeTeams
	case isList(payload["conferences"]):
		return ShapeLeague
	case isMap(payload["schedule"]), isList(payload["weeks"]):
		return ShapeSchedule
	case hasKey(payload, "week") && hasKey(payload, "injuries"), weekHasTeams(payload):
		return ShapeInjuries
	default:
		return ShapeGeneric
	}
}

// weekHasTeams matches the weekly injury document, which nests teams
// under a week record instead of carrying a top-level injuries key.
func weekHasTeams(payload map[string]any) bool {
	week, ok := payload["week"].(map[string]any)
	return ok && isList(week["teams"])
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// pick copies the listed fields that are present in src.
func pick(src map[string]any, fields ...string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := src[f]; ok {
			out[f] = v
		}
	}
	return out
}
