package track

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
)

// Track groups courses followed by members of a committee.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Committee   string      `json:"committee"`
	Courses     []Course    `json:"courses"`
	Members     []string    `json:"members"` // member ids
	Applicants  []Applicant `json:"applicants"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (t *Track) HasMember(memberID string) bool {
	for _, id := range t.Members {
		if id == memberID {
			return true
		}
	}
	return false
}

// ApplicantIndex returns the index of the member's application, -1 if they never applied.
func (t *Track) ApplicantIndex(memberID string) int {
	for i := range t.Applicants {
		if t.Applicants[i].MemberID == memberID {
			return i
		}
	}
	return -1
}

func (t *Track) Course(courseID string) (Course, bool) {
	for _, c := range t.Courses {
		if c.ID == courseID {
			return c, true
		}
	}
	return Course{}, false
}

type NewTrack struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Committee   string `json:"committee" validate:"required"`
}

func (nt *NewTrack) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Description = core.CleanString(nt.Description)
	nt.Committee = core.CleanString(nt.Committee)
	return validate.Struct(nt)
}

type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// Application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// Applicant is a member's application to join a track.
type Applicant struct {
	MemberID    string     `json:"memberId"`
	Status      string     `json:"status"`
	AppliedAt   time.Time  `json:"appliedAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// TrackApplicants lists the applications of one track, with the applicants' contact.
type TrackApplicants struct {
	TrackID    string          `json:"trackId"`
	Name       string          `json:"name"`
	Committee  string          `json:"committee"`
	Applicants []ApplicantInfo `json:"applicants"`
}

type ApplicantInfo struct {
	Applicant
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Announcement is a stored notice, global when TrackID is empty.
// It is purged once ExpiresAt has passed.
type Announcement struct {
	ID        string     `json:"id"`
	TrackID   string     `json:"trackId,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatorID string     `json:"creatorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (a Announcement) Expired(at time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(at)
}

type NewAnnouncement struct {
	TrackID   string     `json:"trackId"`
	Title     string     `json:"title" validate:"required"`
	Content   string     `json:"content" validate:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.TrackID = core.CleanString(na.TrackID)
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return validate.Struct(na)
}

// AnnounceResult is the announcement sent to a track, and how many members were notified.
type AnnounceResult struct {
	Announcement Announcement `json:"announcement"`
	Notified     int          `json:"notified"`
}

type AnnouncementFilter struct {
	TrackID string `query:"trackId"`
}

type QueryFilter struct {
	Committee string   `query:"committee"`
	IDs       []string `query:"-"`
}

func (qf QueryFilter) Match(t Track) bool {
	if qf.Committee != "" && t.Committee != qf.Committee {
		return false
	}
	if len(qf.IDs) == 0 {
		return true
	}
	for _, id := range qf.IDs {
		if id == t.ID {
			return true
		}
	}
	return false
}
