package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"github.com/leadradar/lead-radar-api/internal/domain/repositories"
)

var ErrInvalidLead = errors.New("invalid lead data")

type LeadUseCase struct {
	leadRepo repositories.ILeadRepository
}

func NewLeadUseCase(leadRepo repositories.ILeadRepository) *LeadUseCase {
	return &LeadUseCase{leadRepo: leadRepo}
}

func (uc *LeadUseCase) GetLeads(ctx context.Context) ([]entities.Lead, error) {
	return uc.leadRepo.FindAll(ctx)
}

func (uc *LeadUseCase) GetLeadsByVideoAnalysis(ctx context.Context, videoAnalysisID int) ([]entities.Lead, error) {
	return uc.leadRepo.FindByVideoAnalysis(ctx, videoAnalysisID)
}

func (uc *LeadUseCase) GetLeadsBySession(ctx context.Context, sessionID string) ([]entities.Lead, error) {
	return uc.leadRepo.FindBySession(ctx, sessionID)
}

// CreateLead validates and stores one lead. The leadId is generated
// when the caller does not provide one.
func (uc *LeadUseCase) CreateLead(ctx context.Context, lead *entities.Lead) (*entities.Lead, error) {
	if err := ValidateLead(lead); err != nil {
		return nil, err
	}

	applyLeadDefaults(lead)

	if err := uc.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// CreateLeads validates and stores a batch in one insert, used when the
// workflow hands back several leads at once. All-or-nothing: one
// invalid lead rejects the whole batch.
func (uc *LeadUseCase) CreateLeads(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error) {
	if len(leads) == 0 {
		return []entities.Lead{}, nil
	}
	for i := range leads {
		if err := ValidateLead(&leads[i]); err != nil {
			return nil, fmt.Errorf("lead %d: %w", i, err)
		}
		applyLeadDefaults(&leads[i])
	}
	return uc.leadRepo.CreateMany(ctx, leads)
}

func applyLeadDefaults(lead *entities.Lead) {
	if lead.LeadID == "" {
		lead.LeadID = GenerateLeadID()
	}
	if lead.ConfidenceScore == nil {
		defaultScore := 50
		lead.ConfidenceScore = &defaultScore
	}
	if lead.IntentKeywords == nil {
		lead.IntentKeywords = []string{}
	}
	if lead.PropertyType == "" {
		lead.PropertyType = "rental"
	}
	if lead.Priority == "" {
		lead.Priority = "medium"
	}
	if lead.Type == "" {
		lead.Type = "rental"
	}
}

// ValidateLead checks the invariants a lead row must satisfy: username
// and comment present, confidence score inside [0,100].
func ValidateLead(lead *entities.Lead) error {
	if strings.TrimSpace(lead.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidLead)
	}
	if strings.TrimSpace(lead.Comment) == "" {
		return fmt.Errorf("%w: comment is required", ErrInvalidLead)
	}
	if lead.ConfidenceScore != nil && (*lead.ConfidenceScore < 0 || *lead.ConfidenceScore > 100) {
		return fmt.Errorf("%w: confidenceScore must be between 0 and 100", ErrInvalidLead)
	}
	return nil
}

// GenerateLeadID builds an external lead identifier in the
// lead_<unix-ms>_<suffix> shape older clients already parse.
func GenerateLeadID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("lead_%d_%s", time.Now().UnixMilli(), suffix)
}
