package pipeline

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 25

// Page is one slice of a filtered and sorted list.
type Page[T any] struct {
	Items  []T
	Number int
	Size   int
	Total  int
	Pages  int
}

// First returns the 1-based position of the first item on the page, or 0.
func (p Page[T]) First() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

// Last returns the 1-based position of the last item on the page, or 0.
func (p Page[T]) Last() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.First() + len(p.Items) - 1
}

// PageCount returns ceil(total/size).
func PageCount(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage keeps page within [1, pages].
func ClampPage(page, pages int) int {
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the requested page of items. Out-of-range pages are clamped.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := PageCount(len(items), size)
	page = ClampPage(page, pages)
	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Items:  items[start:end],
		Number: page,
		Size:   size,
		Total:  len(items),
		Pages:  pages,
	}
}

// PageNumbers returns the page links to display: the first and last page, the
// current page and its neighbours. A 0 marks an elided gap.
func PageNumbers(current, pages int) []int {
	if pages <= 0 {
		return nil
	}
	current = ClampPage(current, pages)
	out := make([]int, 0, 7)
	prev := 0
	for p := 1; p <= pages; p++ {
		if p != 1 && p != pages && (p < current-1 || p > current+1) {
			continue
		}
		if prev != 0 && p-prev > 1 {
			out = append(out, 0)
		}
		out = append(out, p)
		prev = p
	}
	return out
}
