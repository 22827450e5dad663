package postgres

import (
	"time"

	gallerymodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/gallery"
	gallerypkg "github.com/smilesniffer/ticketing-backend/internal/gallery"
	"gorm.io/gorm"
)

type PictureRepository struct {
	db *gorm.DB
}

func NewPictureRepository(db *gorm.DB) gallerypkg.RepositoryAPI {
	return &PictureRepository{
		db: db,
	}
}

func (r *PictureRepository) Create(p *gallerymodel.Picture) error {
	return r.db.Create(p).Error
}

func (r *PictureRepository) GetActive(limit, offset int) ([]*gallerymodel.Picture, error) {
	var pictures []*gallerymodel.Picture
	err := r.db.Where("expires_at > ?", time.Now()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&pictures).Error
	return pictures, err
}
