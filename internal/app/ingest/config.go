package ingest

// Config holds batch pipeline settings.
type Config struct {
	SourceDir string
	Workers   int
	// AssumeComplete lists document names whose entries are recorded as
	// complete. These documents are processed first, in the listed order.
	AssumeComplete []string
	BatchSize      int
	DryRun         bool
	// Load bulk-inserts the records into the database after export.
	Load bool
}
