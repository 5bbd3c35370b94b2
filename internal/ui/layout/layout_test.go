package layout

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCalculate_WideScreen(t *testing.T) {
	l := Calculate(160, 40)

	if l.Stacked {
		t.Error("should not stack at 160 cols")
	}
	if l.LeftWidth < minLeftWidth || l.LeftWidth > maxLeftWidth {
		t.Errorf("left column out of range: %d", l.LeftWidth)
	}
	if l.LeftWidth+l.RightWidth != 160 {
		t.Errorf("columns should sum to 160, got %d", l.LeftWidth+l.RightWidth)
	}
	if l.ContentHeight != 38 {
		t.Errorf("ContentHeight = %d, want 38", l.ContentHeight)
	}
}

func TestCalculate_NarrowScreen(t *testing.T) {
	l := Calculate(80, 30)

	if !l.Stacked {
		t.Error("should stack at 80 cols")
	}
	if l.LeftWidth != 80 || l.RightWidth != 80 {
		t.Errorf("stacked widths = %d/%d", l.LeftWidth, l.RightWidth)
	}
}

func TestCalculate_TinyTerminal(t *testing.T) {
	l := Calculate(10, 1)
	if l.ContentHeight != 1 {
		t.Errorf("ContentHeight = %d, want 1", l.ContentHeight)
	}
	if l.TableRows(5) != 1 {
		t.Errorf("TableRows = %d, want 1", l.TableRows(5))
	}
}

func TestHandleResize(t *testing.T) {
	l := HandleResize(tea.WindowSizeMsg{Width: 120, Height: 20})
	if l.Width != 120 || l.Height != 20 || l.Stacked {
		t.Errorf("HandleResize = %+v", l)
	}
}
