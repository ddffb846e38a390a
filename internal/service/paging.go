package service

// PageSize is the fixed number of requests shown per listing page.
const PageSize = 5

// PageBounds returns the half-open [start, end) interval of page n over a
// collection of total items. Out-of-range pages yield an empty interval.
func PageBounds(total, page, size int) (int, int) {
	if total <= 0 || page < 0 || size <= 0 {
		return 0, 0
	}
	start := page * size
	if start >= total {
		return 0, 0
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

// PageSlice returns the items of page n.
func PageSlice[T any](items []T, page, size int) []T {
	start, end := PageBounds(len(items), page, size)
	return items[start:end]
}

// HasPrev reports whether a previous page exists.
func HasPrev(page int) bool {
	return page > 0
}

// HasNext reports whether a further page exists after page n.
func HasNext(total, page, size int) bool {
	return (page+1)*size < total
}
