package services

import (
	"context"
	"fmt"

	"schoolsite/internal/core"
	"schoolsite/internal/ports"
)

// DirectoryService serves the alumni directory and the photo gallery.
type DirectoryService struct {
	alumni  ports.AlumniRepository
	gallery ports.GalleryRepository
}

func NewDirectoryService(alumni ports.AlumniRepository, gallery ports.GalleryRepository) *DirectoryService {
	return &DirectoryService{alumni: alumni, gallery: gallery}
}

// SearchAlumni filters the directory by query and returns the requested page.
func (s *DirectoryService) SearchAlumni(ctx context.Context, query string, page, size int) (core.Page[core.Alumnus], error) {
	all, err := s.alumni.ListAlumni(ctx)
	if err != nil {
		return core.Page[core.Alumnus]{}, fmt.Errorf("list alumni: %w", err)
	}
	return core.Paginate(core.SearchAlumni(all, query), page, size), nil
}

func (s *DirectoryService) AddAlumnus(ctx context.Context, a core.Alumnus) (core.Alumnus, error) {
	if err := a.Validate(); err != nil {
		return core.Alumnus{}, err
	}
	return s.alumni.CreateAlumnus(ctx, a)
}

func (s *DirectoryService) RemoveAlumnus(ctx context.Context, id int64) error {
	return s.alumni.DeleteAlumnus(ctx, id)
}

// GalleryView is one filtered gallery listing.
type GalleryView struct {
	Tag    string              `json:"tag"`
	Tags   []string            `json:"tags"`
	Images []core.GalleryImage `json:"images"`
}

// Gallery returns the images carrying tag, plus every tag in use so the
// filter bar can be drawn.
func (s *DirectoryService) Gallery(ctx context.Context, tag string) (GalleryView, error) {
	all, err := s.gallery.ListGallery(ctx)
	if err != nil {
		return GalleryView{}, fmt.Errorf("list gallery: %w", err)
	}
	if tag == "" {
		tag = core.TagAll
	}
	images := core.FilterByTag(all, tag)
	if images == nil {
		images = []core.GalleryImage{}
	}
	return GalleryView{Tag: tag, Tags: core.GalleryTags(all), Images: images}, nil
}

func (s *DirectoryService) AddImage(ctx context.Context, g core.GalleryImage) (core.GalleryImage, error) {
	if err := g.Validate(); err != nil {
		return core.GalleryImage{}, err
	}
	return s.gallery.CreateGalleryImage(ctx, g)
}

func (s *DirectoryService) RemoveImage(ctx context.Context, id int64) error {
	return s.gallery.DeleteGalleryImage(ctx, id)
}
