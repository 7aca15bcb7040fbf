package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/dto"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategorySelfParent   = errors.New("cannot set self as parent")
	ErrCategoryIntoSubtree  = errors.New("cannot move category into its own descendant")
)

const categoryPathSeparator = " > "

// CategoryService manages the category tree. The tree is small and always
// loaded whole.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	projectRepo  repository.ProjectRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository, projectRepo repository.ProjectRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		projectRepo:  projectRepo,
	}
}

// CreateCategoryInput represents input for creating a category
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *uint64
}

// categoryTree indexes one snapshot of the categories table
type categoryTree struct {
	byID     map[uint64]models.Category
	children map[uint64][]uint64
	roots    []uint64
}

func newCategoryTree(categories []models.Category) *categoryTree {
	t := &categoryTree{
		byID:     make(map[uint64]models.Category, len(categories)),
		children: make(map[uint64][]uint64),
	}
	for _, c := range categories {
		t.byID[c.ID] = c
	}
	// categories arrive ordered by name, so siblings stay sorted
	for _, c := range categories {
		if c.ParentID == nil {
			t.roots = append(t.roots, c.ID)
			continue
		}
		if _, ok := t.byID[*c.ParentID]; !ok {
			t.roots = append(t.roots, c.ID)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
	}
	return t
}

// descendants returns the subtree below id in depth-first order
func (t *categoryTree) descendants(id uint64, includeSelf bool) []uint64 {
	var out []uint64
	if includeSelf {
		out = append(out, id)
	}
	stack := append([]uint64(nil), t.children[id]...)
	seen := map[uint64]bool{id: true}
	for len(stack) > 0 {
		n := stack[0]
		stack = stack[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		stack = append(append([]uint64(nil), t.children[n]...), stack...)
	}
	return out
}

// path joins the names from the root down to id
func (t *categoryTree) path(id uint64) string {
	var names []string
	seen := make(map[uint64]bool)
	for cur, ok := t.byID[id]; ok && !seen[cur.ID]; {
		seen[cur.ID] = true
		names = append([]string{cur.Name}, names...)
		if cur.ParentID == nil {
			break
		}
		cur, ok = t.byID[*cur.ParentID]
	}
	return strings.Join(names, categoryPathSeparator)
}

func (t *categoryTree) node(id uint64) dto.CategoryTreeDTO {
	c := t.byID[id]
	n := dto.CategoryTreeDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Children:    make([]dto.CategoryTreeDTO, 0, len(t.children[id])),
	}
	for _, child := range t.children[id] {
		n.Children = append(n.Children, t.node(child))
	}
	return n
}

func (s *CategoryService) load() (*categoryTree, error) {
	categories, err := s.categoryRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return newCategoryTree(categories), nil
}

// CreateCategory creates a category, deriving the slug from the name when empty
func (s *CategoryService) CreateCategory(input CreateCategoryInput) (*dto.CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	if input.ParentID != nil {
		if _, err := s.findCategory(*input.ParentID); err != nil {
			return nil, err
		}
	}

	slug := utils.Slugify(input.Slug)
	if slug == "" {
		generated, err := utils.UniqueSlug(name)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
		slug = generated
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		ParentID:    input.ParentID,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return s.GetCategory(category.ID)
}

// GetCategory returns a category with its full path
func (s *CategoryService) GetCategory(id uint64) (*dto.CategoryDTO, error) {
	tree, err := s.load()
	if err != nil {
		return nil, err
	}
	c, ok := tree.byID[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	out := dto.ToCategoryDTO(c, tree.path(id))
	return &out, nil
}

// Tree returns the root categories with their nested children
func (s *CategoryService) Tree() ([]dto.CategoryTreeDTO, error) {
	tree, err := s.load()
	if err != nil {
		return nil, err
	}

	roots := make([]dto.CategoryTreeDTO, 0, len(tree.roots))
	for _, id := range tree.roots {
		roots = append(roots, tree.node(id))
	}
	return roots, nil
}

// Move re-parents a category. A nil parent makes it a root.
func (s *CategoryService) Move(id uint64, parentID *uint64) (*dto.CategoryDTO, error) {
	tree, err := s.load()
	if err != nil {
		return nil, err
	}

	category, ok := tree.byID[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}

	if parentID != nil {
		if *parentID == id {
			return nil, ErrCategorySelfParent
		}
		if _, ok := tree.byID[*parentID]; !ok {
			return nil, ErrCategoryNotFound
		}
		for _, d := range tree.descendants(id, false) {
			if d == *parentID {
				return nil, ErrCategoryIntoSubtree
			}
		}
	}

	category.ParentID = parentID
	if err := s.categoryRepo.Update(&category); err != nil {
		return nil, fmt.Errorf("failed to move category: %w", err)
	}

	return s.GetCategory(id)
}

// Descendants lists the subtree below a category
func (s *CategoryService) Descendants(id uint64, includeSelf bool) ([]dto.CategoryDTO, error) {
	tree, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, ok := tree.byID[id]; !ok {
		return nil, ErrCategoryNotFound
	}

	ids := tree.descendants(id, includeSelf)
	out := make([]dto.CategoryDTO, len(ids))
	for i, d := range ids {
		out[i] = dto.ToCategoryDTO(tree.byID[d], tree.path(d))
	}
	return out, nil
}

// Projects lists the projects anywhere in a category's subtree
func (s *CategoryService) Projects(id uint64) ([]models.Project, error) {
	ids, err := s.subtreeIDs(id)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListByCategories(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *CategoryService) subtreeIDs(id uint64) ([]uint64, error) {
	tree, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, ok := tree.byID[id]; !ok {
		return nil, ErrCategoryNotFound
	}
	return tree.descendants(id, true), nil
}

func (s *CategoryService) findCategory(id uint64) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}
