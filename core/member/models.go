package member

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kazi/core"
)

// Roles
const (
	RoleHead        = "head"
	RoleVice        = "vice"
	RoleMember      = "member"
	RoleNotAccepted = "not accepted"
)

var AllRoles = []string{RoleHead, RoleVice, RoleMember, RoleNotAccepted}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Member is the document owning a member's tasks, HR ratings, inbox and track progress.
type Member struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          string          `json:"role"`
	Committee     string          `json:"committee"`
	Rate          *float64        `json:"rate"`
	Tasks         []Task          `json:"tasks"`
	HRRatings     []HRRating      `json:"hrRatings"`
	StartedTracks []TrackProgress `json:"startedTracks"`
	Messages      []Message       `json:"-"`
	PasswordHash  []byte          `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"` // UTC
	UpdatedAt     time.Time       `json:"updatedAt"` // UTC
}

func (m *Member) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = hash
	return nil
}

func (m *Member) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(m.PasswordHash, []byte(pwd))
}

func (m Member) IsHead() bool { return m.Role == RoleHead }

// TaskIndex returns the index of the task with the given id, -1 if the member has no such task.
func (m Member) TaskIndex(taskID string) int {
	for i := range m.Tasks {
		if m.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// HRRatingFor returns the rating of the given month, or the last appended one when month is empty.
func (m Member) HRRatingFor(month string) (HRRating, bool) {
	if month == "" {
		if n := len(m.HRRatings); n > 0 {
			return m.HRRatings[n-1], true
		}
		return HRRating{}, false
	}
	for _, r := range m.HRRatings {
		if r.Month == month {
			return r, true
		}
	}
	return HRRating{}, false
}

// UpsertHRRating replaces the rating of the same month in place or appends it.
// It reports whether an existing rating was replaced.
func (m *Member) UpsertHRRating(rating HRRating) bool {
	for i := range m.HRRatings {
		if m.HRRatings[i].Month == rating.Month {
			m.HRRatings[i] = rating
			return true
		}
	}
	m.HRRatings = append(m.HRRatings, rating)
	return false
}

// TrackIndex returns the index of the track progress with the given track id, -1 if not started.
func (m Member) TrackIndex(trackID string) int {
	for i := range m.StartedTracks {
		if m.StartedTracks[i].TrackID == trackID {
			return i
		}
	}
	return -1
}

// HRRating is a monthly soft-skills rating. Each score is in [0, 100].
type HRRating struct {
	Month            string    `json:"month"`
	MemberID         string    `json:"memberId"`
	SocialScore      float64   `json:"socialScore"`
	BehaviorScore    float64   `json:"behaviorScore"`
	InteractionScore float64   `json:"interactionScore"`
	RatedAt          time.Time `json:"ratedAt"`
}

func (r HRRating) Total() float64 {
	return r.SocialScore + r.BehaviorScore + r.InteractionScore
}

// Message is an inbox notification.
type Message struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Date  time.Time `json:"date"`
}

type TrackProgress struct {
	TrackID string   `json:"trackId"`
	Courses []string `json:"courses"` // started course ids
}

func (p TrackProgress) HasCourse(courseID string) bool {
	for _, c := range p.Courses {
		if c == courseID {
			return true
		}
	}
	return false
}

// NewMember contains information needed to register a new Member.
type NewMember struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Committee       string `json:"committee" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Role            string `json:"-" validate:"omitempty,memberrole"` // set by the admin CLI only
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Committee = core.CleanString(nm.Committee)
	return validate.Struct(nm)
}

// PasswordReset sets a new password for the member with Email.
type PasswordReset struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (pr *PasswordReset) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

type RoleUpdate struct {
	Role string `json:"role" validate:"required,memberrole"`
}

func (ru RoleUpdate) Validate(validate *validator.Validate) error { return validate.Struct(ru) }

type RateUpdate struct {
	Rate *float64 `json:"rate" validate:"required,min=0,max=100"`
}

func (ru RateUpdate) Validate(validate *validator.Validate) error { return validate.Struct(ru) }

type GetFilter struct {
	ID    string
	Email string
}

// QueryFilter applies AND operation on its set fields. Results keep the registration order.
type QueryFilter struct {
	Committee    string   `query:"committee"`
	Roles        []string `query:"role"`
	ExcludeRoles []string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Committee = core.CleanString(qf.Committee)
}

// Match reports whether m satisfies the filter.
func (qf QueryFilter) Match(m Member) bool {
	if qf.Committee != "" && m.Committee != qf.Committee {
		return false
	}
	if len(qf.Roles) > 0 && !containsString(qf.Roles, m.Role) {
		return false
	}
	return !containsString(qf.ExcludeRoles, m.Role)
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
