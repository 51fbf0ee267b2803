package model

// PendingElement is a group-mode element staged outside the graph,
// remembered with the page it was painted on so overlays stay per-page.
type PendingElement struct {
	PageID  string
	Element *Element
}

// EditorState is the explicit, caller-owned editing context: what is
// selected, which category and page are active, and any pending group-mode
// elements that have not entered the graph yet. The core holds no ambient
// selection state of its own; mutation and render calls receive this value.
type EditorState struct {
	SelectedObjects   map[string]bool
	SelectedInstances map[string]bool
	SelectedElements  map[string]bool

	ActiveCategory string
	ActivePage     string
	ActiveView     string

	// GroupMode collects painted elements in PendingElements instead of
	// adding them to the graph; FinishGroup turns them into one object.
	GroupMode       bool
	PendingElements []PendingElement
}

// NewEditorState returns an empty editor state.
func NewEditorState() *EditorState {
	return &EditorState{
		SelectedObjects:   make(map[string]bool),
		SelectedInstances: make(map[string]bool),
		SelectedElements:  make(map[string]bool),
	}
}

// ClearSelection empties all three selection levels.
func (s *EditorState) ClearSelection() {
	s.SelectedObjects = make(map[string]bool)
	s.SelectedInstances = make(map[string]bool)
	s.SelectedElements = make(map[string]bool)
}

// HasSelection reports whether anything is selected at any level.
func (s *EditorState) HasSelection() bool {
	return len(s.SelectedObjects) > 0 || len(s.SelectedInstances) > 0 || len(s.SelectedElements) > 0
}

// SelectObject makes obj the only selection.
func (s *EditorState) SelectObject(id string) {
	s.ClearSelection()
	s.SelectedObjects[id] = true
}

// SelectInstance makes inst the only selection.
func (s *EditorState) SelectInstance(objID, instID string) {
	s.ClearSelection()
	s.SelectedObjects[objID] = true
	s.SelectedInstances[instID] = true
}

// SelectElement makes elem the only selection.
func (s *EditorState) SelectElement(id string) {
	s.ClearSelection()
	s.SelectedElements[id] = true
}
