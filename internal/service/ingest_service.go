package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// EnrichmentStarter kicks off background enrichment for freshly ingested
// contacts. Implemented by the enrichment job runner.
type EnrichmentStarter interface {
	StartJob(ctx context.Context, userID string, contactIDs []string) (*models.EnrichmentJob, error)
}

// IngestService handles CSV upload and contact ingestion
type IngestService struct {
	contactRepo ContactRepository
	profileRepo ProfileRepository
	jobRepo     EnrichmentJobRepository
	starter     EnrichmentStarter
	maxBatch    int
	logger      *logging.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	contactRepo ContactRepository,
	profileRepo ProfileRepository,
	jobRepo EnrichmentJobRepository,
	starter EnrichmentStarter,
	maxBatch int,
	logger *logging.Logger,
) *IngestService {
	return &IngestService{
		contactRepo: contactRepo,
		profileRepo: profileRepo,
		jobRepo:     jobRepo,
		starter:     starter,
		maxBatch:    maxBatch,
		logger:      logger,
	}
}

// connection export column layout
const (
	colFirstName = 0
	colLastName  = 1
	colURL       = 2
	colCompany   = 4
	colPosition  = 5
	minColumns   = 6
)

// IngestResult summarizes an upload
type IngestResult struct {
	Job           *models.EnrichmentJob `json:"job"`
	ParsedRows    int                   `json:"parsedRows"`
	SkippedRows   int                   `json:"skippedRows"`
	TruncatedRows int                   `json:"truncatedRows"`
}

// Upload parses a LinkedIn connections CSV export, persists the valid rows as
// NEW contacts, and starts a background enrichment job over them.
func (s *IngestService) Upload(ctx context.Context, userID string, file io.Reader) (*IngestResult, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, skipped, truncated, err := s.parseCSV(file)
	if err != nil {
		return nil, err
	}

	contacts := make([]*models.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, &models.Contact{
			UserID:      profile.ID,
			FullName:    row.fullName,
			LinkedInURL: row.linkedInURL,
			RawRole:     row.rawRole,
			CompanyName: row.companyName,
			Status:      types.StatusNew,
		})
	}

	contactIDs, err := s.contactRepo.BatchCreate(ctx, contacts)
	if err != nil {
		return nil, fmt.Errorf("failed to persist contacts: %w", err)
	}

	job, err := s.starter.StartJob(ctx, profile.ID, contactIDs)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   profile.ID,
		"job_id":    job.ID,
		"parsed":    len(rows),
		"skipped":   skipped,
		"truncated": truncated,
	}).Info("CSV ingest accepted")

	return &IngestResult{
		Job:           job,
		ParsedRows:    len(rows),
		SkippedRows:   skipped,
		TruncatedRows: truncated,
	}, nil
}

type csvRow struct {
	fullName    string
	linkedInURL string
	rawRole     string
	companyName string
}

// parseCSV reads a LinkedIn connections export. The export carries a free-text
// preamble before the real header row, which always starts with "First Name".
func (s *IngestService) parseCSV(file io.Reader) (rows []csvRow, skipped, truncated int, err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read upload: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headerSeen := false
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, 0, 0, &types.ServiceError{
				Code:    "VALIDATION_ERROR",
				Message: fmt.Sprintf("malformed CSV: %v", readErr),
			}
		}

		if !headerSeen {
			if len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "First Name") {
				headerSeen = true
			}
			continue
		}

		if len(rows) >= s.maxBatch {
			truncated++
			continue
		}

		row, ok := parseRecord(record)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	if !headerSeen && len(data) > 0 {
		return nil, 0, 0, &types.ServiceError{
			Code:    "VALIDATION_ERROR",
			Message: "CSV header row not found: expected a LinkedIn connections export",
		}
	}

	return rows, skipped, truncated, nil
}

func parseRecord(record []string) (csvRow, bool) {
	if len(record) < minColumns {
		return csvRow{}, false
	}

	company := strings.TrimSpace(record[colCompany])
	if company == "" {
		return csvRow{}, false
	}

	fullName := strings.TrimSpace(strings.TrimSpace(record[colFirstName]) + " " + strings.TrimSpace(record[colLastName]))
	if fullName == "" {
		return csvRow{}, false
	}

	return csvRow{
		fullName:    fullName,
		linkedInURL: strings.TrimSpace(record[colURL]),
		rawRole:     strings.TrimSpace(record[colPosition]),
		companyName: company,
	}, true
}

// JobStatus returns the current state of an enrichment job for polling.
// Jobs owned by another user are reported as not found.
func (s *IngestService) JobStatus(ctx context.Context, userID, jobID string) (*models.EnrichmentJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, &types.ServiceError{Code: "JOB_NOT_FOUND", Message: "enrichment job not found"}
	}
	return job, nil
}
