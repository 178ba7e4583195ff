package feeds

// Paginate slices items[offset:offset+limit], clamped to the list length,
// and reports pagination metadata for the whole list.
// limit and offset are expected to be validated by the caller.
func Paginate[T any](items []T, limit, offset int) ([]T, PaginationInfo) {
	total := len(items)

	start := min(max(offset, 0), total)
	end := min(start+max(limit, 0), total)

	info := PaginationInfo{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: offset+limit < total,
	}
	if info.HasMore {
		next := offset + limit
		info.NextOffset = &next
	}

	return items[start:end], info
}
