package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yukikurage/project-hub-api/internal/dto"
	"github.com/yukikurage/project-hub-api/internal/graph"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDependencyTaskNotFound = errors.New("dependency task not found")
	ErrCrossProjectDependency = errors.New("tasks must belong to the same project")
)

// DependencyService owns the task dependency graph: edge writes with cycle
// prevention, traversals, and the derived blocked/progress state.
type DependencyService struct {
	taskRepo repository.TaskRepository
	depRepo  repository.DependencyRepository
	timeRepo repository.TimeEntryRepository
	logger   *zap.Logger

	// project id -> *sync.Mutex
	locks sync.Map
}

// NewDependencyService creates a new DependencyService
func NewDependencyService(taskRepo repository.TaskRepository, depRepo repository.DependencyRepository, timeRepo repository.TimeEntryRepository, logger *zap.Logger) *DependencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DependencyService{
		taskRepo: taskRepo,
		depRepo:  depRepo,
		timeRepo: timeRepo,
		logger:   logger.Named("dependencies"),
	}
}

// Progress maps a status onto a completion percentage.
func Progress(status models.TaskStatus) int {
	switch status {
	case models.TaskStatusDone:
		return 100
	case models.TaskStatusInProgress:
		return 50
	default:
		return 0
	}
}

// AddDependency records that taskID depends on dependsOnID. The edge is
// validated against the project's graph and inserted while both the process
// lock and the database project lock are held.
func (s *DependencyService) AddDependency(taskID, dependsOnID uint64) error {
	if taskID == dependsOnID {
		return &graph.CycleError{TaskID: taskID, DependsOnID: dependsOnID}
	}

	task, err := s.loadPair(taskID, dependsOnID)
	if err != nil {
		return err
	}

	unlock := s.lockProject(task.ProjectID)
	defer unlock()

	edge := &models.TaskDependency{
		TaskID:      taskID,
		DependsOnID: dependsOnID,
		ProjectID:   task.ProjectID,
	}
	err = s.depRepo.InsertChecked(edge, func(edges []models.TaskDependency) error {
		g := buildGraph(edges)
		if g.HasEdge(graph.Edge{From: taskID, To: dependsOnID}) {
			return nil
		}
		return g.CheckEdge(taskID, dependsOnID)
	})
	if err != nil {
		if errors.Is(err, graph.ErrCycle) {
			return err
		}
		return fmt.Errorf("failed to add dependency: %w", err)
	}

	s.logger.Debug("dependency added",
		zap.Uint64("task_id", taskID),
		zap.Uint64("depends_on_id", dependsOnID),
		zap.Uint64("project_id", task.ProjectID),
	)
	return nil
}

// RemoveDependency deletes the edge. Removing a missing edge succeeds.
func (s *DependencyService) RemoveDependency(taskID, dependsOnID uint64) error {
	task, err := s.findTask(taskID, ErrTaskNotFound)
	if err != nil {
		return err
	}

	unlock := s.lockProject(task.ProjectID)
	defer unlock()

	if err := s.depRepo.Delete(taskID, dependsOnID); err != nil {
		return fmt.Errorf("failed to remove dependency: %w", err)
	}
	return nil
}

// ValidateNewDependency runs the insertion checks without writing anything.
func (s *DependencyService) ValidateNewDependency(taskID, candidateID uint64) error {
	if taskID == candidateID {
		return &graph.CycleError{TaskID: taskID, DependsOnID: candidateID}
	}

	task, err := s.loadPair(taskID, candidateID)
	if err != nil {
		return err
	}

	g, err := s.projectGraph(task.ProjectID)
	if err != nil {
		return err
	}
	return g.CheckEdge(taskID, candidateID)
}

// Ancestors returns every task taskID transitively depends on.
func (s *DependencyService) Ancestors(taskID uint64) ([]models.Task, error) {
	return s.traverse(taskID, (*graph.Graph).Ancestors)
}

// Descendants returns every task that transitively depends on taskID.
func (s *DependencyService) Descendants(taskID uint64) ([]models.Task, error) {
	return s.traverse(taskID, (*graph.Graph).Descendants)
}

func (s *DependencyService) traverse(taskID uint64, walk func(*graph.Graph, uint64) []uint64) ([]models.Task, error) {
	task, err := s.findTask(taskID, ErrTaskNotFound)
	if err != nil {
		return nil, err
	}

	g, err := s.projectGraph(task.ProjectID)
	if err != nil {
		return nil, err
	}

	ids := walk(g, taskID)
	tasks, err := s.taskRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

// IsBlocked reports whether any direct dependency of taskID is not done.
func (s *DependencyService) IsBlocked(taskID uint64) (bool, error) {
	counts, err := s.taskRepo.OpenDependencyCounts([]uint64{taskID})
	if err != nil {
		return false, fmt.Errorf("failed to count open dependencies: %w", err)
	}
	return counts[taskID] > 0, nil
}

// BlockedTasks lists the project's tasks that are waiting on a dependency.
func (s *DependencyService) BlockedTasks(projectID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListBlocked(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked tasks: %w", err)
	}
	return tasks, nil
}

// TaskStates derives the read-only state of each task in two queries.
func (s *DependencyService) TaskStates(tasks []models.Task) (map[uint64]dto.TaskState, error) {
	ids := make([]uint64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	open, err := s.taskRepo.OpenDependencyCounts(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count open dependencies: %w", err)
	}

	totals, err := s.timeRepo.TotalByTasks(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to sum time entries: %w", err)
	}

	states := make(map[uint64]dto.TaskState, len(tasks))
	for _, t := range tasks {
		states[t.ID] = dto.TaskState{
			IsBlocked: open[t.ID] > 0,
			Progress:  Progress(t.Status),
			TotalTime: totals[t.ID],
		}
	}
	return states, nil
}

// TaskState is TaskStates for a single task.
func (s *DependencyService) TaskState(task models.Task) (dto.TaskState, error) {
	states, err := s.TaskStates([]models.Task{task})
	if err != nil {
		return dto.TaskState{}, err
	}
	return states[task.ID], nil
}

// loadPair loads both ends of a prospective edge and checks they share a
// project. It returns the dependent task.
func (s *DependencyService) loadPair(taskID, dependsOnID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID, ErrTaskNotFound)
	if err != nil {
		return nil, err
	}

	dependsOn, err := s.findTask(dependsOnID, ErrDependencyTaskNotFound)
	if err != nil {
		return nil, err
	}

	if task.ProjectID != dependsOn.ProjectID {
		return nil, ErrCrossProjectDependency
	}
	return task, nil
}

func (s *DependencyService) findTask(id uint64, notFound error) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *DependencyService) projectGraph(projectID uint64) (*graph.Graph, error) {
	edges, err := s.depRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies: %w", err)
	}
	return buildGraph(edges), nil
}

func (s *DependencyService) lockProject(projectID uint64) func() {
	m, _ := s.locks.LoadOrStore(projectID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func buildGraph(edges []models.TaskDependency) *graph.Graph {
	list := make([]graph.Edge, len(edges))
	for i, e := range edges {
		list[i] = graph.Edge{From: e.TaskID, To: e.DependsOnID}
	}
	return graph.New(list)
}
