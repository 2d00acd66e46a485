package service

import (
	"context"
	"strings"
	"testing"

	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linkedInExport = `Notes:
"When exporting your connection data, you may notice that some of the email addresses are missing."

First Name,Last Name,URL,Email Address,Company,Position
Jane,Doe,https://www.linkedin.com/in/janedoe,,Acme Corp,VP Operations
John,Roe,https://www.linkedin.com/in/johnroe,john@globex.com,Globex,Head of Sales
Sam,Poe,https://www.linkedin.com/in/sampoe,,,Freelancer
Ada,Moe,https://www.linkedin.com/in/adamoe,,Initech,CTO
`

func newIngestFixture(maxBatch int) (*IngestService, *mockContactRepo, *mockJobRepo, *mockStarter) {
	contacts := newMockContactRepo()
	jobs := newMockJobRepo()
	starter := &mockStarter{jobRepo: jobs}
	profiles := newMockProfileRepo(&models.Profile{
		ID:               "user-1",
		MissionStatement: "Automate ops reporting",
		IntentType:       types.IntentSales,
	})

	svc := NewIngestService(contacts, profiles, jobs, starter, maxBatch, testLogger())
	return svc, contacts, jobs, starter
}

func TestIngestUpload_ParsesLinkedInExport(t *testing.T) {
	svc, contacts, _, starter := newIngestFixture(500)

	result, err := svc.Upload(context.Background(), "user-1", strings.NewReader(linkedInExport))
	require.NoError(t, err)

	// Sam Poe has no company and is skipped.
	assert.Equal(t, 3, result.ParsedRows)
	assert.Equal(t, 1, result.SkippedRows)
	assert.Equal(t, 0, result.TruncatedRows)
	assert.Equal(t, 3, result.Job.TotalContacts)
	assert.Equal(t, types.JobRunning, result.Job.Status)
	assert.Len(t, starter.lastBatch, 3)

	created, err := contacts.GetByID(context.Background(), starter.lastBatch[0])
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", created.FullName)
	assert.Equal(t, "Acme Corp", created.CompanyName)
	assert.Equal(t, "VP Operations", created.RawRole)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", created.LinkedInURL)
	assert.Equal(t, types.StatusNew, created.Status)
}

func TestIngestUpload_StripsUTF8BOM(t *testing.T) {
	svc, _, _, _ := newIngestFixture(500)

	withBOM := "\xEF\xBB\xBFFirst Name,Last Name,URL,Email Address,Company,Position\nJane,Doe,url,,Acme,VP\n"
	result, err := svc.Upload(context.Background(), "user-1", strings.NewReader(withBOM))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ParsedRows)
}

func TestIngestUpload_CapsBatchSize(t *testing.T) {
	svc, _, _, starter := newIngestFixture(2)

	result, err := svc.Upload(context.Background(), "user-1", strings.NewReader(linkedInExport))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ParsedRows)
	assert.Equal(t, 2, result.Job.TotalContacts)
	assert.GreaterOrEqual(t, result.TruncatedRows, 1)
	assert.Len(t, starter.lastBatch, 2)
}

func TestIngestUpload_EmptyCSVCompletesImmediately(t *testing.T) {
	svc, _, jobs, _ := newIngestFixture(500)

	empty := "First Name,Last Name,URL,Email Address,Company,Position\n"
	result, err := svc.Upload(context.Background(), "user-1", strings.NewReader(empty))
	require.NoError(t, err)

	assert.Equal(t, 0, result.ParsedRows)
	assert.Equal(t, 0, result.Job.TotalContacts)

	job, err := jobs.GetByID(context.Background(), result.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, job.Status)
}

func TestIngestUpload_MissingHeaderRejected(t *testing.T) {
	svc, _, _, _ := newIngestFixture(500)

	_, err := svc.Upload(context.Background(), "user-1", strings.NewReader("Name,Company\nJane,Acme\n"))
	require.Error(t, err)

	var svcErr *types.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "VALIDATION_ERROR", svcErr.Code)
}

func TestIngestUpload_UnknownProfileRejected(t *testing.T) {
	svc, _, _, _ := newIngestFixture(500)

	_, err := svc.Upload(context.Background(), "ghost", strings.NewReader(linkedInExport))
	require.Error(t, err)

	var svcErr *types.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "PROFILE_NOT_FOUND", svcErr.Code)
}

func TestJobStatus_ScopedToOwner(t *testing.T) {
	svc, _, _, _ := newIngestFixture(500)

	result, err := svc.Upload(context.Background(), "user-1", strings.NewReader(linkedInExport))
	require.NoError(t, err)

	job, err := svc.JobStatus(context.Background(), "user-1", result.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Job.ID, job.ID)

	_, err = svc.JobStatus(context.Background(), "user-2", result.Job.ID)
	require.Error(t, err)

	var svcErr *types.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "JOB_NOT_FOUND", svcErr.Code)
}

func TestIngestUpload_ZeroByteFile(t *testing.T) {
	svc, _, _, _ := newIngestFixture(500)

	result, err := svc.Upload(context.Background(), "user-1", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, result.ParsedRows)
	assert.Equal(t, types.JobCompleted, result.Job.Status)
}
