package gallery

import (
	"log/slog"
	"time"

	errs "github.com/smilesniffer/ticketing-backend/internal"
	"github.com/smilesniffer/ticketing-backend/internal/core/common/validation"
	gallerymodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/gallery"
)

type AddPictureDTO struct {
	PictureURL string    `json:"picture_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (d *AddPictureDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("picture_url", d.PictureURL).Required().MaxLength(2048)
	validator.Field("expires_at", d.ExpiresAt).NotPast()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type GalleryService struct {
	repository RepositoryAPI
	logger     *slog.Logger
}

func NewGalleryService(repository RepositoryAPI, logger *slog.Logger) *GalleryService {
	return &GalleryService{
		repository: repository,
		logger:     logger,
	}
}

// AddPicture records an uploaded picture URL with its expiry. The upload to
// object storage happens on the client; only the record lives here.
func (s *GalleryService) AddPicture(dto *AddPictureDTO) (*gallerymodel.Picture, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("picture validation failed", "error", err)
		return nil, err
	}

	picture := &gallerymodel.Picture{
		PictureURL: dto.PictureURL,
		ExpiresAt:  dto.ExpiresAt,
	}

	if err := s.repository.Create(picture); err != nil {
		s.logger.Error("failed to create picture record", "error", err)
		return nil, errs.NewInternalError("failed to create picture record", err)
	}

	s.logger.Info("picture recorded", "picture_id", picture.ID)
	return picture, nil
}

// ActivePictures returns records whose expiry has not passed, newest first.
func (s *GalleryService) ActivePictures(limit, offset int) ([]*gallerymodel.Picture, error) {
	pictures, err := s.repository.GetActive(limit, offset)
	if err != nil {
		return nil, errs.NewInternalError("failed to fetch pictures", err)
	}
	return pictures, nil
}
