package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	schemadocs "github.com/jonathan/job-tracker/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const folderSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "name", "color"],
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string"},
		"color": {"type": "string", "enum": ["mint", "peach", "blue", "lavender", "coral"]},
		"jobCount": {"type": "integer"}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFile(t *testing.T) {
	schemaPath := writeFile(t, t.TempDir(), "folder.schema.json", folderSchema)

	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{"valid", `{"id": "folder-1", "name": "外企", "color": "mint"}`, nil},
		{"missing fields", `{"id": "folder-1"}`, []string{"(root)", "(root)"}},
		{"wrong enum", `{"id": "f", "name": "n", "color": "green"}`, []string{"color"}},
		{"wrong type", `{"id": 1, "name": "b", "color": "coral"}`, []string{"id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(schemaPath, []byte(tt.doc))
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateFile_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	err := ValidateFile(filepath.Join(dir, "missing.schema.json"), []byte(`{}`))
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "schema file not found")

	badSchema := writeFile(t, dir, "bad.schema.json", `{"type": 42}`)
	assert.True(t, errors.As(ValidateFile(badSchema, []byte(`{}`)), &loadErr))

	schemaPath := writeFile(t, dir, "folder.schema.json", folderSchema)
	assert.Error(t, ValidateFile(schemaPath, []byte("{ invalid json }")))
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("nope.schema.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "nope.schema.json", loadErr.Path)
}

func TestValidateDocument_RootTypeMismatch(t *testing.T) {
	err := ValidateDocument(schemadocs.Snapshot, []byte(`[]`))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "jobs.0.id", Message: "String length must be greater than or equal to 1"},
		{Field: "folders", Message: "Invalid type"},
	}}
	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "1. jobs.0.id")
	assert.Contains(t, msg, "2. folders: Invalid type")
}
