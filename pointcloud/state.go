package pointcloud

// Status bits carried in each point's state byte. StateDeleted excludes a
// point from serialized output; the other bits belong to unrelated editor
// features and are round-tripped untouched.
const (
	StateDeleted  byte = 1 << 0
	StateSelected byte = 1 << 1
	StateHidden   byte = 1 << 2
)

// Deleted reports whether the state byte has the deleted bit set.
func Deleted(state byte) bool {
	return state&StateDeleted != 0
}
