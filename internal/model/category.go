package model

// Category groups events for browsing and filtering.  The client renders
// the list as filter chips; events reference a category by CategoryID.
type Category struct {
	ID   uint64 `json:"id"`   // categories.id
	Name string `json:"name"` // categories.name
}
