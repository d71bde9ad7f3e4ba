package tui

type stage int

const (
	stageIdle stage = iota
	stageSearching
	stageDisambiguating
	stageStockSearching
)

func (s stage) String() string {
	switch s {
	case stageSearching:
		return "SEARCHING"
	case stageDisambiguating:
		return "PICK"
	case stageStockSearching:
		return "STOCK"
	default:
		return "IDLE"
	}
}

type focusArea int

const (
	focusInput focusArea = iota
	focusGrid
)

const heroTagline = "Canada Magic Cards Search"

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	sessionLogLimit           = 200
	inputPlaceholder          = "Enter card name..."
)
