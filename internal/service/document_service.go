package service

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type documentRepository interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Document, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, id string) error
}

type documentStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// UploadDocumentRequest holds the payload for attaching a file to a student.
type UploadDocumentRequest struct {
	StudentID string
	FileName  string
	FileType  string
	Category  string
	Data      []byte
}

// DocumentServiceParams bundles the dependencies of DocumentService.
type DocumentServiceParams struct {
	Repo     documentRepository
	Students classStudentRepository
	Storage  documentStorage
	Cache    *CacheService
	Logger   *zap.Logger
	Now      func() time.Time
}

// DocumentService handles student document use-cases.
type DocumentService struct {
	repo     documentRepository
	students classStudentRepository
	storage  documentStorage
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
}

// NewDocumentService constructs the document service.
func NewDocumentService(params DocumentServiceParams) *DocumentService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &DocumentService{
		repo:     params.Repo,
		students: params.Students,
		storage:  params.Storage,
		cache:    params.Cache,
		logger:   params.Logger,
		now:      params.Now,
	}
}

// List returns documents and pagination metadata.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, *models.Pagination, error) {
	documents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "document not found", "failed to list documents")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return documents, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single document's metadata.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "document not found", "failed to load document")
	}
	return document, nil
}

// Upload stores the file and records its metadata. The upload date defaults
// to now.
func (s *DocumentService) Upload(ctx context.Context, req UploadDocumentRequest) (*models.Document, error) {
	if req.StudentID == "" || req.FileName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id and file name are required")
	}
	if len(req.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file content is empty")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}

	stored := sanitizeFilename(req.StudentID + "_" + req.FileName)
	relPath, err := s.storage.Save(stored, req.Data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	document := &models.Document{
		StudentID:  req.StudentID,
		FileName:   req.FileName,
		FileType:   req.FileType,
		FileSize:   int64(len(req.Data)),
		UploadDate: s.now().UTC(),
		Category:   req.Category,
		Path:       relPath,
	}
	if err := s.repo.Create(ctx, document); err != nil {
		if removeErr := s.storage.Delete(relPath); removeErr != nil {
			s.logger.Warn("orphaned upload cleanup failed", zap.String("path", relPath), zap.Error(removeErr))
		}
		return nil, storeError(err, "document not found", "failed to create document")
	}
	s.invalidate(ctx)
	return document, nil
}

// Open returns a handle to the stored file for download.
func (s *DocumentService) Open(ctx context.Context, id string) (*models.Document, *os.File, error) {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, storeError(err, "document not found", "failed to load document")
	}
	file, err := s.storage.Open(document.Path)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return document, file, nil
}

// Delete removes the document record and its stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "document not found", "failed to load document")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "document not found", "failed to delete document")
	}
	if err := s.storage.Delete(document.Path); err != nil {
		s.logger.Warn("stored file removal failed", zap.String("path", document.Path), zap.Error(err))
	}
	s.invalidate(ctx)
	return nil
}

func (s *DocumentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateViews(ctx)
	}
}
