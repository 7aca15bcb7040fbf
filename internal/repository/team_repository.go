package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateTeam is returned when creating the team row fails.
	ErrCreateTeam = errors.New("team repository: create team failed")
	// ErrCreateTeamOwner is returned when creating the owner membership fails.
	ErrCreateTeamOwner = errors.New("team repository: create owner membership failed")
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// CreateWithOwner creates a team and its owner membership atomically
func (r *GormTeamRepository) CreateWithOwner(team *models.Team, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		team.CreatedByID = &ownerID
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeam, err)
		}

		owner := &models.TeamMembership{
			TeamID:      team.ID,
			UserID:      ownerID,
			Role:        models.TeamRoleOwner,
			Status:      models.MembershipActive,
			InvitedByID: &ownerID,
		}
		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeamOwner, err)
		}

		return nil
	})
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// Delete deletes a team and all of its memberships in a transaction.
// Projects keep existing and lose their team.
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Where("team_id = ?", id).
			Update("team_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Team{}, id).Error
	})
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(member *models.TeamMembership) error {
	return r.db.Create(member).Error
}

// UpdateMember saves a membership
func (r *GormTeamRepository) UpdateMember(member *models.TeamMembership) error {
	return r.db.Omit("Team", "User").Save(member).Error
}

// FindMember finds a specific team membership
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMembership, error) {
	var member models.TeamMembership
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembersByUserID lists the teams a user belongs to
func (r *GormTeamRepository) ListMembersByUserID(userID uint64, activeOnly bool) ([]models.TeamMembership, error) {
	var memberships []models.TeamMembership
	query := r.db.Preload("Team").Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("status = ?", models.MembershipActive)
	}
	if err := query.Order("created_at DESC").Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMembership, error) {
	var members []models.TeamMembership
	if err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Order("id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
