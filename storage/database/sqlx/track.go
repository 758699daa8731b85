package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/track"
)

const trackColumns = "id, name, description, committee, courses, members, applicants, created_at, updated_at"

type trackRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Committee   string         `db:"committee"`
	Courses     types.JSONText `db:"courses"`
	Members     pq.StringArray `db:"members"`
	Applicants  types.JSONText `db:"applicants"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (row trackRow) track() (track.Track, error) {
	courses := make([]track.Course, 0)
	if len(row.Courses) > 0 {
		if err := row.Courses.Unmarshal(&courses); err != nil {
			return track.Track{}, errors.Wrap(err, "decoding courses")
		}
	}
	members := []string(row.Members)
	if members == nil {
		members = []string{}
	}
	applicants := make([]track.Applicant, 0)
	if len(row.Applicants) > 0 {
		if err := row.Applicants.Unmarshal(&applicants); err != nil {
			return track.Track{}, errors.Wrap(err, "decoding applicants")
		}
	}
	return track.Track{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Committee:   row.Committee,
		Courses:     courses,
		Members:     members,
		Applicants:  applicants,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}, nil
}

func newTrackRow(t track.Track) (trackRow, error) {
	courses := t.Courses
	if courses == nil {
		courses = []track.Course{}
	}
	data, err := json.Marshal(courses)
	if err != nil {
		return trackRow{}, errors.Wrap(err, "encoding courses")
	}
	members := t.Members
	if members == nil {
		members = []string{}
	}
	applicants := t.Applicants
	if applicants == nil {
		applicants = []track.Applicant{}
	}
	appData, err := json.Marshal(applicants)
	if err != nil {
		return trackRow{}, errors.Wrap(err, "encoding applicants")
	}
	return trackRow{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Committee:   t.Committee,
		Courses:     types.JSONText(data),
		Members:     pq.StringArray(members),
		Applicants:  types.JSONText(appData),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}, nil
}

type trackRepository struct {
	db *sqlx.DB
}

var _ track.Repository = (*trackRepository)(nil) // interface compliance check

func NewTrackRepository(db *sqlx.DB) track.Repository {
	return &trackRepository{db: db}
}

func (repo *trackRepository) CreateTrack(ctx context.Context, t track.Track) (track.Track, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	row, err := newTrackRow(t)
	if err != nil {
		return track.Track{}, err
	}
	q := `INSERT INTO track (` + trackColumns + `)
		VALUES (:id, :name, :description, :committee, :courses, :members, :applicants, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return track.Track{}, errors.Wrap(err, "inserting track")
	}
	return row.track()
}

func (repo *trackRepository) GetTrack(ctx context.Context, id string) (track.Track, error) {
	if _, err := uuid.Parse(id); err != nil {
		return track.Track{}, track.ErrNotFound
	}
	var row trackRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+trackColumns+" FROM track WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return track.Track{}, track.ErrNotFound
		}
		return track.Track{}, errors.Wrap(err, "selecting track")
	}
	return row.track()
}

func (repo *trackRepository) QueryTracks(ctx context.Context, filter track.QueryFilter) ([]track.Track, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Committee != "" {
		args = append(args, filter.Committee)
		conds = append(conds, fmt.Sprintf("committee = $%d", len(args)))
	}
	if len(filter.IDs) > 0 {
		ids := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			if _, err := uuid.Parse(id); err == nil {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return []track.Track{}, nil
		}
		args = append(args, pq.Array(ids))
		conds = append(conds, fmt.Sprintf("id = ANY($%d::uuid[])", len(args)))
	}

	q := "SELECT " + trackColumns + " FROM track"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at, id"

	var rows []trackRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting tracks")
	}
	tracks := make([]track.Track, 0, len(rows))
	for _, row := range rows {
		t, err := row.track()
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func (repo *trackRepository) UpdateTrack(ctx context.Context, t track.Track) (track.Track, error) {
	if _, err := uuid.Parse(t.ID); err != nil {
		return track.Track{}, track.ErrNotFound
	}
	row, err := newTrackRow(t)
	if err != nil {
		return track.Track{}, err
	}
	q := `UPDATE track SET
			name = :name, description = :description, committee = :committee,
			courses = :courses, members = :members, applicants = :applicants, updated_at = :updated_at
		WHERE id = :id
		RETURNING ` + trackColumns
	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return track.Track{}, errors.Wrap(err, "preparing track update")
	}
	defer func() { _ = stmt.Close() }()

	var updated trackRow
	if err = stmt.GetContext(ctx, &updated, row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return track.Track{}, track.ErrNotFound
		}
		return track.Track{}, errors.Wrap(err, "updating track")
	}
	return updated.track()
}

func (repo *trackRepository) DeleteTrack(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM track WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "deleting track")
	}
	return nil
}
