package docstore

import "fmt"

// NotFoundError indicates a lookup or update against a document that does not
// exist.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s/%s not found", e.Collection, e.ID)
}
