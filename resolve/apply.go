package resolve

// applyPick writes the accepted concept onto the placeholder node and removes
// the marker fields. Failed placeholders are left untouched, so the document
// keeps its markers for a later run.
func applyPick(node map[string]any, system, code, display string) {
	node["system"] = system
	node["code"] = code
	node["display"] = display
	delete(node, markerDisplay)
	delete(node, markerSystem)
	delete(node, markerCode)
}
