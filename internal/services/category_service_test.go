package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/dto"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/testutil"
	"gorm.io/gorm"
)

func newCategoryFixture(t *testing.T) (*CategoryService, *gorm.DB) {
	db := testutil.NewDB(t)
	return NewCategoryService(repository.NewCategoryRepository(db), repository.NewProjectRepository(db)), db
}

func mustCreateCategory(t *testing.T, s *CategoryService, name string, parent *dto.CategoryDTO) *dto.CategoryDTO {
	input := CreateCategoryInput{Name: name}
	if parent != nil {
		input.ParentID = &parent.ID
	}
	c, err := s.CreateCategory(input)
	require.NoError(t, err)
	return c
}

func TestCategory_PathAndTree(t *testing.T) {
	s, _ := newCategoryFixture(t)

	eng := mustCreateCategory(t, s, "Engineering", nil)
	backend := mustCreateCategory(t, s, "Backend", eng)
	golang := mustCreateCategory(t, s, "Go", backend)
	mustCreateCategory(t, s, "Design", nil)

	assert.Equal(t, "Engineering > Backend > Go", golang.FullPath)
	assert.NotEmpty(t, golang.Slug)

	roots, err := s.Tree()
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Design", roots[0].Name)
	assert.Equal(t, "Engineering", roots[1].Name)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "Go", roots[1].Children[0].Children[0].Name)

	below, err := s.Descendants(eng.ID, false)
	require.NoError(t, err)
	assert.Len(t, below, 2)

	withSelf, err := s.Descendants(eng.ID, true)
	require.NoError(t, err)
	assert.Equal(t, eng.ID, withSelf[0].ID)
}

func TestCategory_MoveRules(t *testing.T) {
	s, _ := newCategoryFixture(t)

	eng := mustCreateCategory(t, s, "Engineering", nil)
	backend := mustCreateCategory(t, s, "Backend", eng)
	golang := mustCreateCategory(t, s, "Go", backend)

	_, err := s.Move(eng.ID, &eng.ID)
	assert.ErrorIs(t, err, ErrCategorySelfParent)

	_, err = s.Move(eng.ID, &golang.ID)
	assert.ErrorIs(t, err, ErrCategoryIntoSubtree)

	missing := uint64(999)
	_, err = s.Move(golang.ID, &missing)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	moved, err := s.Move(golang.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, "Go", moved.FullPath)

	moved, err = s.Move(eng.ID, &golang.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go > Engineering", moved.FullPath)
}

func TestCategory_ProjectsIncludeSubtree(t *testing.T) {
	s, db := newCategoryFixture(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")

	eng := mustCreateCategory(t, s, "Engineering", nil)
	backend := mustCreateCategory(t, s, "Backend", eng)
	design := mustCreateCategory(t, s, "Design", nil)

	api := testutil.CreateProject(t, db, "API", owner.ID, nil)
	site := testutil.CreateProject(t, db, "Site", owner.ID, nil)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", api.ID).Update("category_id", backend.ID).Error)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", site.ID).Update("category_id", design.ID).Error)

	projects, err := s.Projects(eng.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "API", projects[0].Title)

	_, err = s.Projects(999)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategory_NameRequired(t *testing.T) {
	s, _ := newCategoryFixture(t)
	_, err := s.CreateCategory(CreateCategoryInput{Name: "  "})
	assert.ErrorIs(t, err, ErrCategoryNameRequired)
}
