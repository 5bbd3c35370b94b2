// Package listview keeps a local view (search term, sort, page) in sync with
// a remote paged collection: which page to fetch, which response to keep,
// how to refine the fetched page, and which page buttons to draw.
package listview

import "strconv"

// ButtonKind classifies an entry of a page window.
type ButtonKind int

const (
	ButtonPage ButtonKind = iota
	ButtonEllipsis
	ButtonBoundary
)

func (k ButtonKind) String() string {
	switch k {
	case ButtonPage:
		return "page"
	case ButtonEllipsis:
		return "ellipsis"
	case ButtonBoundary:
		return "boundary"
	}
	return "unknown"
}

// Button is one entry of a page window. Page is 0 for ellipses.
type Button struct {
	Kind   ButtonKind
	Page   int
	Active bool
}

// Label renders the button as it appears in a pager.
func (b Button) Label() string {
	if b.Kind == ButtonEllipsis {
		return "…"
	}
	return strconv.Itoa(b.Page)
}

// TotalPages returns ceil(totalCount/pageSize), or 0 when either is not positive.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

// PageWindow derives the pager layout for currentPage. currentPage is clamped
// into [1, totalPages] and maxVisible below 1 is treated as 1, so the active
// page is always among the emitted buttons when there is at least one page.
func PageWindow(currentPage, totalCount, pageSize, maxVisible int) []Button {
	totalPages := TotalPages(totalCount, pageSize)
	if totalPages <= 0 {
		return nil
	}
	if maxVisible < 1 {
		maxVisible = 1
	}
	currentPage = min(max(currentPage, 1), totalPages)

	start := max(1, currentPage-maxVisible/2)
	end := min(totalPages, start+maxVisible-1)
	if end-start+1 < maxVisible {
		start = max(1, end-maxVisible+1)
	}

	out := make([]Button, 0, end-start+5)
	if start > 1 {
		out = append(out, Button{Kind: ButtonBoundary, Page: 1})
		if start > 2 {
			out = append(out, Button{Kind: ButtonEllipsis})
		}
	}
	for p := start; p <= end; p++ {
		out = append(out, Button{Kind: ButtonPage, Page: p, Active: p == currentPage})
	}
	if end < totalPages-1 {
		out = append(out, Button{Kind: ButtonEllipsis})
	}
	if end < totalPages {
		out = append(out, Button{Kind: ButtonBoundary, Page: totalPages})
	}
	return out
}

// ClampPage returns page limited to [1, totalPages]; with no pages it is 1.
func ClampPage(page, totalCount, pageSize int) int {
	tp := TotalPages(totalCount, pageSize)
	if tp == 0 || page < 1 {
		return 1
	}
	return min(page, tp)
}

// RowNumber is the 1-based position of the index-th row of page across the
// whole collection.
func RowNumber(page, pageSize, index int) int {
	return (page-1)*pageSize + index + 1
}
