package cms

// Mutation is one entry of a Sanity mutations array.
type Mutation map[string]any

// Insert places items relative to an array path such as "comments[-1]".
type Insert struct {
	Before  string `json:"before,omitempty"`
	After   string `json:"after,omitempty"`
	Replace string `json:"replace,omitempty"`
	Items   []any  `json:"items"`
}

// Patch changes fields of an existing document.
type Patch struct {
	ID           string         `json:"id"`
	Set          map[string]any `json:"set,omitempty"`
	SetIfMissing map[string]any `json:"setIfMissing,omitempty"`
	Inc          map[string]any `json:"inc,omitempty"`
	Insert       *Insert        `json:"insert,omitempty"`
}

// PatchMutation wraps p.
func PatchMutation(p Patch) Mutation {
	return Mutation{"patch": p}
}

// CreateIfNotExists creates doc unless its _id already exists.
func CreateIfNotExists(doc map[string]any) Mutation {
	return Mutation{"createIfNotExists": doc}
}

// Create creates doc.
func Create(doc map[string]any) Mutation {
	return Mutation{"create": doc}
}

// Delete removes the document with id.
func Delete(id string) Mutation {
	return Mutation{"delete": map[string]string{"id": id}}
}
