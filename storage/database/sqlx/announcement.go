package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core/track"
)

const announcementColumns = "id, track_id, title, content, expires_at, creator_id, created_at, updated_at"

type announcementRow struct {
	ID        string      `db:"id"`
	TrackID   null.String `db:"track_id"`
	Title     string      `db:"title"`
	Content   string      `db:"content"`
	ExpiresAt null.Time   `db:"expires_at"`
	CreatorID string      `db:"creator_id"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (row announcementRow) announcement() track.Announcement {
	a := track.Announcement{
		ID:        row.ID,
		TrackID:   row.TrackID.String,
		Title:     row.Title,
		Content:   row.Content,
		CreatorID: row.CreatorID,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.ExpiresAt.Valid {
		exp := row.ExpiresAt.Time.UTC()
		a.ExpiresAt = &exp
	}
	return a
}

func newAnnouncementRow(a track.Announcement) announcementRow {
	return announcementRow{
		ID:        a.ID,
		TrackID:   null.NewString(a.TrackID, a.TrackID != ""),
		Title:     a.Title,
		Content:   a.Content,
		ExpiresAt: null.TimeFromPtr(a.ExpiresAt),
		CreatorID: a.CreatorID,
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
}

type announcementRepository struct {
	db *sqlx.DB
}

var _ track.AnnouncementRepository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) track.AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a track.Announcement) (track.Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	row := newAnnouncementRow(a)
	q := `INSERT INTO announcement (` + announcementColumns + `)
		VALUES (:id, :track_id, :title, :content, :expires_at, :creator_id, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return track.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return row.announcement(), nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, id string) (track.Announcement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return track.Announcement{}, track.ErrAnnouncementNotFound
	}
	var row announcementRow
	q := "SELECT " + announcementColumns + " FROM announcement WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return track.Announcement{}, track.ErrAnnouncementNotFound
		}
		return track.Announcement{}, errors.Wrap(err, "selecting announcement")
	}
	return row.announcement(), nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, filter track.AnnouncementFilter) ([]track.Announcement, error) {
	q := "SELECT " + announcementColumns + " FROM announcement"
	var args []interface{}
	if filter.TrackID != "" {
		if _, err := uuid.Parse(filter.TrackID); err != nil {
			return []track.Announcement{}, nil
		}
		q += " WHERE track_id = $1"
		args = append(args, filter.TrackID)
	}
	q += " ORDER BY created_at, id"

	var rows []announcementRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting announcements")
	}
	anns := make([]track.Announcement, 0, len(rows))
	for _, row := range rows {
		anns = append(anns, row.announcement())
	}
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a track.Announcement) (track.Announcement, error) {
	if _, err := uuid.Parse(a.ID); err != nil {
		return track.Announcement{}, track.ErrAnnouncementNotFound
	}
	q := `UPDATE announcement SET
			title = :title, content = :content, expires_at = :expires_at, updated_at = :updated_at
		WHERE id = :id
		RETURNING ` + announcementColumns
	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return track.Announcement{}, errors.Wrap(err, "preparing announcement update")
	}
	defer func() { _ = stmt.Close() }()

	var updated announcementRow
	if err = stmt.GetContext(ctx, &updated, newAnnouncementRow(a)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return track.Announcement{}, track.ErrAnnouncementNotFound
		}
		return track.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	return updated.announcement(), nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM announcement WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return nil
}

func (repo *announcementRepository) DeleteExpiredAnnouncements(ctx context.Context, at time.Time) error {
	q := "DELETE FROM announcement WHERE expires_at IS NOT NULL AND expires_at < $1"
	if _, err := repo.db.ExecContext(ctx, q, at.UTC()); err != nil {
		return errors.Wrap(err, "deleting expired announcements")
	}
	return nil
}
