package sqlite

// elementJSON represents an element in elements.jsonl.
type elementJSON struct {
	ElementID string `json:"element_id"`
	Class     string `json:"class"`
	CreatedAt string `json:"created_at"`
}

// elementValueJSON represents one stored property value in
// element_values.jsonl. References hold the target element id.
type elementValueJSON struct {
	ElementID string `json:"element_id"`
	Property  string `json:"property"`
	Ordinal   int    `json:"ordinal"`
	ValueType string `json:"value_type"`
	Value     string `json:"value"`
}
