package layout

// ScreenLayout holds calculated dimensions for the header, content area and
// status bar, plus the detail view split.
type ScreenLayout struct {
	Width  int
	Height int

	ContentHeight int // height minus header and status bar

	// Detail view columns. In stacked mode both equal Width.
	Stacked    bool
	LeftWidth  int
	RightWidth int
}

const (
	headerHeight    = 1
	statusBarHeight = 1
	minLeftWidth    = 36
	maxLeftWidth    = 60
	splitBreakpoint = 100
)

// Calculate computes the layout from terminal dimensions.
func Calculate(width, height int) ScreenLayout {
	l := ScreenLayout{
		Width:         width,
		Height:        height,
		ContentHeight: max(height-headerHeight-statusBarHeight, 1),
	}

	if width < splitBreakpoint {
		l.Stacked = true
		l.LeftWidth = width
		l.RightWidth = width
		return l
	}
	l.LeftWidth = clamp(width*2/5, minLeftWidth, maxLeftWidth)
	l.RightWidth = width - l.LeftWidth
	return l
}

// TableRows is how many list rows fit once chrome lines are taken out.
func (l ScreenLayout) TableRows(chrome int) int {
	return max(l.ContentHeight-chrome, 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
