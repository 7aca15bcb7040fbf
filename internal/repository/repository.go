package repository

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDs finds all tasks with the given IDs
	FindByIDs(ids []uint64) ([]models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task together with its edges and assignments
	Delete(id uint64) error

	// AssignUsers assigns users to a task and returns the IDs that were not
	// actively assigned before the call
	AssignUsers(taskID uint64, userIDs []uint64) ([]uint64, error)

	// UnassignUsers removes user assignments from a task
	UnassignUsers(taskID uint64, userIDs []uint64) error

	// ListBlocked returns the project's tasks with at least one open direct dependency
	ListBlocked(projectID uint64) ([]models.Task, error)

	// OpenDependencyCounts returns, per task, how many direct dependencies are not done
	OpenDependencyCounts(taskIDs []uint64) (map[uint64]int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectIDs     []uint64
	Status         *models.TaskStatus
	AssignedUserID *uint64
	ParentID       *uint64
	RootsOnly      bool
	Page           int
	PageSize       int
}

// DependencyRepository persists dependency edges
type DependencyRepository interface {
	// ListByProject loads every edge of a project in one query
	ListByProject(projectID uint64) ([]models.TaskDependency, error)

	// InsertChecked inserts the edge inside a transaction that holds the
	// project lock. check receives the project's current edges and aborts
	// the insertion by returning an error.
	InsertChecked(edge *models.TaskDependency, check func(edges []models.TaskDependency) error) error

	// Delete removes an edge; removing a missing edge is not an error
	Delete(taskID, dependsOnID uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// CreateWithOwner creates a team and the creator's active owner membership
	CreateWithOwner(team *models.Team, ownerID uint64) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete deletes a team and its memberships
	Delete(id uint64) error

	// AddMember adds a membership
	AddMember(member *models.TeamMembership) error

	// UpdateMember saves a membership
	UpdateMember(member *models.TeamMembership) error

	// FindMember finds a specific membership
	FindMember(teamID, userID uint64) (*models.TeamMembership, error)

	// ListMembersByUserID lists all memberships of a user
	ListMembersByUserID(userID uint64, activeOnly bool) ([]models.TeamMembership, error)

	// ListMembers lists all members of a team
	ListMembers(teamID uint64) ([]models.TeamMembership, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListAccessible lists projects owned by the user or shared through an active team membership
	ListAccessible(userID uint64) ([]models.Project, error)

	// AccessibleIDs returns the IDs of ListAccessible
	AccessibleIDs(userID uint64) ([]uint64, error)

	// HasAccess reports whether the user may work in the project
	HasAccess(projectID, userID uint64) (bool, error)

	// Update updates a project
	Update(project *models.Project) error

	// Clone copies a project and its tasks in one transaction
	Clone(source *models.Project, clone *models.Project) error

	// ListByCategories lists projects in any of the given categories
	ListByCategories(categoryIDs []uint64) ([]models.Project, error)

	// CountMembers counts how many of the given users may access the project
	CountMembers(projectID uint64, userIDs []uint64) (int64, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(category *models.Category) error
	FindByID(id uint64) (*models.Category, error)
	ListAll() ([]models.Category, error)
	Update(category *models.Category) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by case-insensitive exact email match
	FindByEmail(email string) (*models.User, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	FindByID(id uint64) (*models.Comment, error)
	ListByTask(taskID uint64) ([]models.Comment, error)
}

// ActivityRepository defines the interface for the activity feed
type ActivityRepository interface {
	// ListForProjects returns the newest activities of the given projects
	ListForProjects(projectIDs []uint64, limit int) ([]models.Activity, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// CreateWithActivity persists the activity and one notification per
	// recipient in a single transaction
	CreateWithActivity(activity *models.Activity, recipientIDs []uint64) ([]models.Notification, error)

	// ListForRecipient lists a recipient's notifications, newest first
	ListForRecipient(filter NotificationFilter) ([]models.Notification, int64, error)

	// MarkRead flips is_read for the recipient's unread notifications among ids
	MarkRead(recipientID uint64, ids []uint64) (int64, error)
}

// NotificationFilter holds filtering options for listing notifications
type NotificationFilter struct {
	RecipientID uint64
	UnreadOnly  bool
	Page        int
	PageSize    int
}

// TimeEntryRepository defines the interface for time entry data access
type TimeEntryRepository interface {
	Create(entry *models.TimeEntry) error
	FindByID(id uint64) (*models.TimeEntry, error)
	Update(entry *models.TimeEntry) error
	ListByTask(taskID uint64) ([]models.TimeEntry, error)
	FindRunning(userID uint64) (*models.TimeEntry, error)
	TotalByTasks(taskIDs []uint64) (map[uint64]time.Duration, error)
}
