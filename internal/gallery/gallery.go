package gallery

import (
	gallerymodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/gallery"
)

// RepositoryAPI is the persistence surface for picture records.
type RepositoryAPI interface {
	Create(p *gallerymodel.Picture) error
	GetActive(limit, offset int) ([]*gallerymodel.Picture, error)
}
