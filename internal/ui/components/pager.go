package components

import (
	"fmt"
	"strings"

	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// Pager renders a pagination window with previous/next arrows and a
// "Page x of y" summary.
func Pager(s theme.Styles, buttons []listview.Button, page, totalPages, total int) string {
	if totalPages == 0 {
		return s.Muted.Render("No results")
	}

	prev, next := s.PageButton, s.PageButton
	if page <= 1 {
		prev = s.PageDisabled
	}
	if page >= totalPages {
		next = s.PageDisabled
	}

	parts := []string{prev.Render("‹")}
	for _, b := range buttons {
		switch {
		case b.Kind == listview.ButtonEllipsis:
			parts = append(parts, s.PageDisabled.Render(b.Label()))
		case b.Active:
			parts = append(parts, s.PageActive.Render(b.Label()))
		default:
			parts = append(parts, s.PageButton.Render(b.Label()))
		}
	}
	parts = append(parts, next.Render("›"))

	summary := s.Muted.Render(fmt.Sprintf("  Page %d of %d (%d total)", page, totalPages, total))
	return strings.Join(parts, "") + summary
}
