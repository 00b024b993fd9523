package gallery

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"backend-velohub/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const uploadTTL = 15 * time.Minute

var (
	ErrNotFound  = errors.New("photo not found")
	ErrForbidden = errors.New("only the uploader or an admin can delete a photo")
	ErrMissing   = errors.New("photo_url required")

	nowFn = time.Now
)

type Service struct {
	db      db.Querier
	baseURL string
}

func NewService(db db.Querier, baseURL string) *Service {
	return &Service{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// PresignUpload reserves an object key under the storage base URL.
func (s *Service) PresignUpload(userID, fileName string) Upload {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), " ", "-"))
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}
	key := "gallery/" + userID + "/" + uuid.NewString() + "/" + name
	return Upload{
		ObjectKey: key,
		URL:       s.baseURL + "/" + key,
		ExpiresAt: nowFn().Add(uploadTTL),
	}
}

func (s *Service) AddPhoto(ctx context.Context, eventID, userID, url, caption string) (Photo, error) {
	if url == "" {
		return Photo{}, ErrMissing
	}
	photo := Photo{ID: uuid.NewString(), EventID: eventID, UserID: userID, URL: url, Caption: caption}
	row := s.db.QueryRow(ctx, `
		INSERT INTO gallery_photos (id, event_id, user_id, photo_url, caption)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, photo.ID, photo.EventID, photo.UserID, photo.URL, photo.Caption)
	if err := row.Scan(&photo.CreatedAt); err != nil {
		return Photo{}, err
	}
	return photo, nil
}

func (s *Service) Photos(ctx context.Context, eventID string) ([]Photo, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, event_id, user_id, photo_url, caption, created_at
		FROM gallery_photos WHERE event_id=$1
		ORDER BY created_at DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.URL, &p.Caption, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *Service) DeletePhoto(ctx context.Context, id, userID string, isAdmin bool) error {
	var owner string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM gallery_photos WHERE id=$1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID && !isAdmin {
		return ErrForbidden
	}
	_, err = s.db.Exec(ctx, `DELETE FROM gallery_photos WHERE id=$1`, id)
	return err
}
