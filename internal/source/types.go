package source

// RawSubscription is one subscription as written in an import file. Fields
// stay as text until Convert validates them.
type RawSubscription struct {
	Name        string  `json:"name" yaml:"name"`
	Price       float64 `json:"price" yaml:"price"`
	Currency    string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Cycle       string  `json:"cycle" yaml:"cycle"`
	NextDueDate string  `json:"next_due_date" yaml:"next_due_date"`
	Notes       string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Document is the top-level shape of an import or export file.
type Document struct {
	Subscriptions []RawSubscription `json:"subscriptions" yaml:"subscriptions"`
}

// DiscoveredFile is an import file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}

// Format is an on-disk encoding.
type Format string

// Supported file formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)
