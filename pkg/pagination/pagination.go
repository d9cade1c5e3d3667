package pagination

const (
	// DefaultLimit matches the original page size of the listing endpoints.
	DefaultLimit = 10
	// MaxLimit caps page sizes requested by callers.
	MaxLimit = 100
)

// Params carries limit/offset paging values parsed from a request.
type Params struct {
	Limit  int
	Offset int
}

// Normalize clamps the params into the supported range.
func (p Params) Normalize() Params {
	return Params{
		Limit:  NormalizeLimit(p.Limit),
		Offset: max(p.Offset, 0),
	}
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit], applying
// the default when unset.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
