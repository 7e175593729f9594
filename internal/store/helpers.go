package store

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// defaultSampleLimit is the page size when the caller asks for none; one
// sample is what a labeling session consumes per request.
const defaultSampleLimit = 1

// clampPage normalises a limit/offset pair.
func clampPage(limit, offset, fallback int) (int, int) {
	if limit <= 0 {
		limit = fallback
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// fraction returns part/whole, or empty when whole is zero.
func fraction(part, whole int, empty float64) float64 {
	if whole == 0 {
		return empty
	}

	return float64(part) / float64(whole)
}
