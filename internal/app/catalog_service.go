package app

import (
	"context"
	"sort"
	"strings"

	"learnhub-quiz-service/internal/domain"
)

// ContentRepository supplies subjects, materials, books and quizzes.
type ContentRepository interface {
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	GetSubject(ctx context.Context, subjectID string) (domain.Subject, error)
	ListMaterials(ctx context.Context, subjectID string) ([]domain.Material, error)
	GetMaterial(ctx context.Context, materialID string) (domain.Material, error)
	ListBooks(ctx context.Context, subjectID string) ([]domain.Book, error)
	GetBook(ctx context.Context, bookID string) (domain.Book, error)
	ListQuizzes(ctx context.Context, subjectID string) ([]domain.Quiz, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
}

// CatalogService is the read side of the learning content.
type CatalogService struct {
	content ContentRepository
	quizzes QuizRepository
}

func NewCatalogService(content ContentRepository, quizzes QuizRepository) *CatalogService {
	return &CatalogService{content: content, quizzes: quizzes}
}

func (c *CatalogService) Subjects(ctx context.Context) ([]domain.Subject, error) {
	return c.content.ListSubjects(ctx)
}

func (c *CatalogService) Subject(ctx context.Context, subjectID string) (domain.Subject, error) {
	return c.content.GetSubject(ctx, subjectID)
}

// Materials lists a subject's materials in their teaching order.
func (c *CatalogService) Materials(ctx context.Context, subjectID string) ([]domain.Material, error) {
	if _, err := c.content.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	materials, err := c.content.ListMaterials(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(materials, func(i, j int) bool { return materials[i].Order < materials[j].Order })
	return materials, nil
}

func (c *CatalogService) Material(ctx context.Context, materialID string) (domain.Material, error) {
	return c.content.GetMaterial(ctx, materialID)
}

func (c *CatalogService) Books(ctx context.Context, subjectID string) ([]domain.Book, error) {
	if _, err := c.content.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return c.content.ListBooks(ctx, subjectID)
}

func (c *CatalogService) Book(ctx context.Context, bookID string) (domain.Book, error) {
	return c.content.GetBook(ctx, bookID)
}

func (c *CatalogService) Quizzes(ctx context.Context, subjectID string) ([]domain.Quiz, error) {
	if _, err := c.content.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return c.content.ListQuizzes(ctx, subjectID)
}

// Quiz goes through the quiz cache, same as session preparation.
func (c *CatalogService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return c.quizzes.GetQuiz(ctx, quizID)
}

// Search matches the query case-insensitively. A blank query matches nothing.
func (c *CatalogService) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{Subjects: []domain.Subject{}, Materials: []domain.Material{}, Books: []domain.Book{}}, nil
	}
	return c.content.Search(ctx, query)
}
