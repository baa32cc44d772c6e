package resolve

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/resolvit/core"
)

// Marker fields that turn an object node into a placeholder. A node carrying
// at least one of them is collected whole and never descended into.
const (
	markerDisplay = "placeholderDisplay"
	markerSystem  = "placeholderSystem"
	markerCode    = "placeholderCode"
)

// discovered pairs a placeholder descriptor with the live node it came from,
// so an accepted pick can be written back in place.
type discovered struct {
	placeholder *core.Placeholder
	node        map[string]any
}

type frame struct {
	value   any
	path    string
	pointer string
}

// discoverPlaceholders walks a decoded JSON document and returns every
// placeholder node in a deterministic order: depth-first, array elements by
// index, object keys sorted.
func discoverPlaceholders(root any) []*discovered {
	var found []*discovered
	stack := []frame{{value: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := f.value.(type) {
		case map[string]any:
			if isPlaceholderNode(v) {
				found = append(found, &discovered{
					placeholder: &core.Placeholder{
						Path:              f.path,
						Pointer:           f.pointer,
						PotentialDisplays: markerValues(v[markerDisplay]),
						PotentialSystems:  markerValues(v[markerSystem]),
						PotentialCodes:    markerValues(v[markerCode]),
					},
					node: v,
				})
				continue
			}

			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			// Push in reverse so keys pop in sorted order.
			for i := len(keys) - 1; i >= 0; i-- {
				k := keys[i]
				stack = append(stack, frame{
					value:   v[k],
					path:    childPath(f.path, k),
					pointer: f.pointer + "/" + escapePointerToken(k),
				})
			}

		case []any:
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					value:   v[i],
					path:    fmt.Sprintf("%s[%d]", f.path, i),
					pointer: f.pointer + "/" + strconv.Itoa(i),
				})
			}
		}
	}

	return found
}

func isPlaceholderNode(node map[string]any) bool {
	_, hasDisplay := node[markerDisplay]
	_, hasSystem := node[markerSystem]
	_, hasCode := node[markerCode]
	return hasDisplay || hasSystem || hasCode
}

// markerValues normalizes a marker field into a list of candidate strings.
// Authors write either a comma-joined string or a JSON list of strings.
func markerValues(raw any) []string {
	switch v := raw.(type) {
	case string:
		var values []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
		return values
	case []any:
		var values []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					values = append(values, trimmed)
				}
			}
		}
		return values
	default:
		return nil
	}
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// escapePointerToken applies RFC 6901 escaping to a single reference token.
func escapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// resourceRef names a resource for reports and logs. FHIR-style resources use
// "resourceType/id"; anything else falls back to the batch position.
func resourceRef(resource any, index int) string {
	if node, ok := resource.(map[string]any); ok {
		resourceType, _ := node["resourceType"].(string)
		id, _ := node["id"].(string)
		if resourceType != "" && id != "" {
			return resourceType + "/" + id
		}
	}
	return fmt.Sprintf("resource[%d]", index)
}
