package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/job-tracker/internal/schemas"
	schemadocs "github.com/jonathan/job-tracker/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, name := range schemadocs.Names() {
		t.Run(name, func(t *testing.T) {
			data, err := schemadocs.Read(name)
			require.NoError(t, err, "schema should be embedded")

			var v map[string]any
			assert.NoError(t, json.Unmarshal(data, &v), "schema file should be valid JSON")
			assert.Equal(t, "http://json-schema.org/draft-07/schema#", v["$schema"])
		})
	}
}

func TestSnapshotSchema_AcceptsMinimalSnapshot(t *testing.T) {
	doc := `{"folders": [], "jobs": [], "aiMessages": [], "chatSessions": [], "user": null, "currentSessionId": null}`
	assert.NoError(t, schemas.ValidateDocument(schemadocs.Snapshot, []byte(doc)))
}

func TestSnapshotSchema_RejectsBadJob(t *testing.T) {
	doc := `{
		"folders": [{"id": "folder-1", "name": "A", "color": "blue", "jobCount": 0}],
		"jobs": [{"id": "job-1", "folderId": "folder-1", "createdAt": 1,
			"company": {"name": "X", "type": "民企"},
			"position": {"title": "T", "status": "new"},
			"aiAnalysis": {"responsibilities": [], "requirements": [], "suggestions": {}}}],
		"aiMessages": [], "chatSessions": []
	}`
	err := schemas.ValidateDocument(schemadocs.Snapshot, []byte(doc))
	require.Error(t, err)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
}

func TestJobRecordSchema(t *testing.T) {
	valid := `{"id": "job-1", "folderId": "folder-1", "createdAt": 1700000000000,
		"company": {"name": "字节跳动", "type": "互联网"},
		"position": {"title": "前端", "status": "inProgress", "deadline": "2025-03-01"},
		"aiAnalysis": {"responsibilities": ["a"], "requirements": [], "suggestions": {"resume": "r"}},
		"hasReminder": true, "reminderEvent": "interview"}`
	assert.NoError(t, schemas.ValidateDocument(schemadocs.JobRecord, []byte(valid)))

	missing := `{"id": "job-1"}`
	assert.Error(t, schemas.ValidateDocument(schemadocs.JobRecord, []byte(missing)))
}
