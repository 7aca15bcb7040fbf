package services

import (
	"fmt"
	"sync"

	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/dto"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"go.uber.org/zap"
)

// TargetLookup returns a display label for the entity with the given id.
type TargetLookup func(id uint64) (string, error)

// TargetRegistry resolves polymorphic activity targets by kind.
type TargetRegistry struct {
	mu      sync.RWMutex
	lookups map[models.TargetKind]TargetLookup
}

func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{lookups: make(map[models.TargetKind]TargetLookup)}
}

// Register sets the lookup for kind, replacing any previous one.
func (r *TargetRegistry) Register(kind models.TargetKind, lookup TargetLookup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[kind] = lookup
}

// Label resolves ref. Unknown kinds are an error.
func (r *TargetRegistry) Label(ref models.TargetRef) (string, error) {
	r.mu.RLock()
	lookup, ok := r.lookups[ref.Kind]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no lookup registered for target kind %q", ref.Kind)
	}
	return lookup(ref.ID)
}

// NewDefaultTargetRegistry wires the lookups for every target kind.
func NewDefaultTargetRegistry(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	commentRepo repository.CommentRepository,
	teamRepo repository.TeamRepository,
) *TargetRegistry {
	r := NewTargetRegistry()
	r.Register(models.TargetTask, func(id uint64) (string, error) {
		t, err := taskRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return t.Title, nil
	})
	r.Register(models.TargetProject, func(id uint64) (string, error) {
		p, err := projectRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return p.Title, nil
	})
	r.Register(models.TargetComment, func(id uint64) (string, error) {
		c, err := commentRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("comment by %s", c.Author.FullName()), nil
	})
	r.Register(models.TargetTeam, func(id uint64) (string, error) {
		t, err := teamRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return t.Name, nil
	})
	return r
}

// ActivityService serves the activity feed.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	projectRepo  repository.ProjectRepository
	targets      *TargetRegistry
	logger       *zap.Logger
}

func NewActivityService(activityRepo repository.ActivityRepository, projectRepo repository.ProjectRepository, targets *TargetRegistry, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		activityRepo: activityRepo,
		projectRepo:  projectRepo,
		targets:      targets,
		logger:       logger.Named("activity"),
	}
}

// Feed returns the newest activities of the projects the user can access.
// Targets that no longer resolve keep an empty label.
func (s *ActivityService) Feed(userID uint64) ([]dto.ActivityDTO, error) {
	projectIDs, err := s.projectRepo.AccessibleIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accessible projects: %w", err)
	}

	activities, err := s.activityRepo.ListForProjects(projectIDs, constants.MaxActivityFeedSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	labels := make(map[models.TargetRef]string)
	feed := make([]dto.ActivityDTO, len(activities))
	for i, a := range activities {
		item := dto.ToActivityDTO(a)

		ref := a.Target()
		label, ok := labels[ref]
		if !ok {
			label, err = s.targets.Label(ref)
			if err != nil {
				s.logger.Debug("activity target did not resolve", zap.Stringer("target", ref), zap.Error(err))
				label = ""
			}
			labels[ref] = label
		}
		item.TargetLabel = label

		feed[i] = item
	}
	return feed, nil
}
