// Package core holds the vault entities and the ports the nutrition engine reads through.
package core

// Metadata represents the flexible key-value pairs associated with a document.
// For markdown notes this is the decoded frontmatter.
type Metadata map[string]any

// Document is a single note in the vault.
// Nutrient records, goal notes and food logs are all documents.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// EventType represents the type of change in the vault.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	// EventRename is emitted for the old ID. The new path arrives as a separate EventCreate.
	EventRename EventType = "RENAME"
)

// Event represents a change in the vault.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
