// Package schemas embeds the JSON Schemas for documents the job tracker
// persists or imports.
package schemas

import "embed"

// Schema file names
const (
	Snapshot  = "snapshot.schema.json"
	JobRecord = "job_record.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw contents of an embedded schema.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files.
func Names() []string {
	return []string{Snapshot, JobRecord}
}
