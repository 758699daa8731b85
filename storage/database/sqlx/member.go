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
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core/member"
)

const uniqueViolation = "23505"

const memberColumns = "id, name, email, role, committee, rate, pwd_hash, document, created_at, updated_at"

type memberRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Role         string         `db:"role"`
	Committee    string         `db:"committee"`
	Rate         null.Float64   `db:"rate"`
	PasswordHash []byte         `db:"pwd_hash"`
	Document     types.JSONText `db:"document"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// memberDocument holds the nested parts of a member. Messages is omitted on updates
// so the stored inbox survives the merge.
type memberDocument struct {
	Tasks         []member.Task          `json:"tasks"`
	HRRatings     []member.HRRating      `json:"hrRatings"`
	StartedTracks []member.TrackProgress `json:"startedTracks"`
	Messages      []member.Message       `json:"messages,omitempty"`
}

type memberRepository struct {
	db *sqlx.DB
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *sqlx.DB) member.Repository {
	return &memberRepository{db: db}
}

func toRow(m member.Member, withMessages bool) (memberRow, error) {
	doc := memberDocument{Tasks: m.Tasks, HRRatings: m.HRRatings, StartedTracks: m.StartedTracks}
	if withMessages {
		doc.Messages = m.Messages
		if doc.Messages == nil {
			doc.Messages = []member.Message{}
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return memberRow{}, errors.Wrap(err, "encoding member document")
	}
	return memberRow{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         m.Role,
		Committee:    m.Committee,
		Rate:         null.Float64FromPtr(m.Rate),
		PasswordHash: m.PasswordHash,
		Document:     types.JSONText(data),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}, nil
}

func fromRow(row memberRow) (member.Member, error) {
	var doc memberDocument
	if len(row.Document) > 0 {
		if err := row.Document.Unmarshal(&doc); err != nil {
			return member.Member{}, errors.Wrap(err, "decoding member document")
		}
	}
	return member.Member{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		Role:          row.Role,
		Committee:     row.Committee,
		Rate:          row.Rate.Ptr(),
		Tasks:         doc.Tasks,
		HRRatings:     doc.HRRatings,
		StartedTracks: doc.StartedTracks,
		Messages:      doc.Messages,
		PasswordHash:  row.PasswordHash,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (repo *memberRepository) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	row, err := toRow(m, true)
	if err != nil {
		return member.Member{}, err
	}

	q := `INSERT INTO member (` + memberColumns + `)
		VALUES (:id, :name, :email, :role, :committee, :rate, :pwd_hash, :document, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return member.Member{}, member.ErrEmailExists
		}
		return member.Member{}, errors.Wrap(err, "inserting member")
	}
	return fromRow(row)
}

func (repo *memberRepository) GetMember(ctx context.Context, filter member.GetFilter) (member.Member, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return member.Member{}, member.ErrNotFound
		}
		args = append(args, filter.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if len(conds) == 0 {
		return member.Member{}, member.ErrNotFound
	}

	var row memberRow
	q := "SELECT " + memberColumns + " FROM member WHERE " + strings.Join(conds, " AND ") + " LIMIT 1"
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "selecting member")
	}
	return fromRow(row)
}

func (repo *memberRepository) QueryMembers(ctx context.Context, filter member.QueryFilter) ([]member.Member, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Committee != "" {
		args = append(args, filter.Committee)
		conds = append(conds, fmt.Sprintf("committee = $%d", len(args)))
	}
	if len(filter.Roles) > 0 {
		args = append(args, pq.Array(filter.Roles))
		conds = append(conds, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if len(filter.ExcludeRoles) > 0 {
		args = append(args, pq.Array(filter.ExcludeRoles))
		conds = append(conds, fmt.Sprintf("role <> ALL($%d)", len(args)))
	}

	q := "SELECT " + memberColumns + " FROM member"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at, id"

	var rows []memberRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting members")
	}
	members := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		m, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (repo *memberRepository) UpdateMember(ctx context.Context, m member.Member) (member.Member, error) {
	if _, err := uuid.Parse(m.ID); err != nil {
		return member.Member{}, member.ErrNotFound
	}
	row, err := toRow(m, false)
	if err != nil {
		return member.Member{}, err
	}

	// the inbox is only written through AppendMessage. No "::" casts here, sqlx reads them as escaped colons.
	q := `UPDATE member SET
			name = :name, email = :email, role = :role, committee = :committee, rate = :rate, pwd_hash = :pwd_hash,
			document = CAST(:document AS jsonb) || jsonb_build_object('messages', COALESCE(document->'messages', CAST('[]' AS jsonb))),
			updated_at = :updated_at
		WHERE id = :id
		RETURNING ` + memberColumns
	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "preparing member update")
	}
	defer func() { _ = stmt.Close() }()

	var updated memberRow
	if err = stmt.GetContext(ctx, &updated, row); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return member.Member{}, member.ErrNotFound
		case isUniqueViolation(err):
			return member.Member{}, member.ErrEmailExists
		}
		return member.Member{}, errors.Wrap(err, "updating member")
	}
	return fromRow(updated)
}

func (repo *memberRepository) AppendMessage(ctx context.Context, memberID string, msg member.Message) error {
	if _, err := uuid.Parse(memberID); err != nil {
		return member.ErrNotFound
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encoding message")
	}

	q := `UPDATE member
		SET document = jsonb_set(document, '{messages}', COALESCE(document->'messages', '[]'::jsonb) || jsonb_build_array($2::jsonb))
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, memberID, types.JSONText(data))
	if err != nil {
		return errors.Wrap(err, "appending message")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return member.ErrNotFound
	}
	return nil
}

func (repo *memberRepository) DeleteMember(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM member WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return nil
}
