package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"schoolsite/internal/core"
)

// ListAlumni returns the directory, most recent batch first.
func (r *SQLiteRepository) ListAlumni(ctx context.Context) ([]core.Alumnus, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, batch_year, profession, organization, location, image_url
		FROM alumni ORDER BY batch_year DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list alumni: %w", err)
	}
	defer rows.Close()

	var out []core.Alumnus
	for rows.Next() {
		var a core.Alumnus
		if err := rows.Scan(&a.ID, &a.Name, &a.BatchYear, &a.Profession, &a.Organization, &a.Location, &a.ImageURL); err != nil {
			return nil, fmt.Errorf("scan alumnus: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateAlumnus(ctx context.Context, a core.Alumnus) (core.Alumnus, error) {
	if err := a.Validate(); err != nil {
		return core.Alumnus{}, err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO alumni (name, batch_year, profession, organization, location, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		a.Name, a.BatchYear, a.Profession, a.Organization, a.Location, a.ImageURL, r.stamp()).Scan(&a.ID)
	if err != nil {
		return core.Alumnus{}, fmt.Errorf("create alumnus: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) DeleteAlumnus(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "alumni", id)
}

// ListGallery returns images newest first.
func (r *SQLiteRepository) ListGallery(ctx context.Context) ([]core.GalleryImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, image_url, tags FROM gallery_images ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	defer rows.Close()

	var out []core.GalleryImage
	for rows.Next() {
		var (
			g    core.GalleryImage
			tags string
		)
		if err := rows.Scan(&g.ID, &g.Title, &g.ImageURL, &tags); err != nil {
			return nil, fmt.Errorf("scan gallery image: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &g.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of image %d: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateGalleryImage(ctx context.Context, g core.GalleryImage) (core.GalleryImage, error) {
	if err := g.Validate(); err != nil {
		return core.GalleryImage{}, err
	}
	if g.Tags == nil {
		g.Tags = []string{}
	}
	tags, err := json.Marshal(g.Tags)
	if err != nil {
		return core.GalleryImage{}, fmt.Errorf("encode tags: %w", err)
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO gallery_images (title, image_url, tags, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`,
		g.Title, g.ImageURL, string(tags), r.stamp()).Scan(&g.ID)
	if err != nil {
		return core.GalleryImage{}, fmt.Errorf("create gallery image: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGalleryImage(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "gallery_images", id)
}

// deleteByID hard deletes from a table without export state. table is
// always a constant.
func (r *SQLiteRepository) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}
