package util

const DefaultPageSize = 20
const MaxPageSize = 100

// Calculate turns 1-based page/size query values into an offset/limit pair,
// clamping nonsense input to sane defaults.
func Calculate(page, size int) (offset, limit int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return (page - 1) * size, size
}
