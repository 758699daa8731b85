package rating

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

const (
	allCommittees = "all"
	latestMonth   = "latest"
	topN          = 5
)

type DashboardFilter struct {
	Committee string `query:"committee"`
	Month     string `query:"month" validate:"omitempty,month"`
}

func (df *DashboardFilter) Validate(validate *validator.Validate) error {
	df.Committee = core.CleanString(df.Committee)
	df.Month = core.CleanString(df.Month)
	return validate.Struct(df)
}

// NewHRRating is a head's monthly HR rating of a member.
type NewHRRating struct {
	MemberID         string   `json:"memberId" validate:"required"`
	Month            string   `json:"month" validate:"required,month"`
	SocialScore      *float64 `json:"socialScore" validate:"required,min=0,max=100"`
	BehaviorScore    *float64 `json:"behaviorScore" validate:"required,min=0,max=100"`
	InteractionScore *float64 `json:"interactionScore" validate:"required,min=0,max=100"`
}

func (nr *NewHRRating) Validate(validate *validator.Validate) error {
	nr.MemberID = core.CleanString(nr.MemberID)
	nr.Month = core.CleanString(nr.Month)
	return validate.Struct(nr)
}

type (
	TaskStats struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Pending   int `json:"pending"`
		Submitted int `json:"submitted"`
	}

	HRSummary struct {
		Month            string  `json:"month"`
		SocialScore      float64 `json:"socialScore"`
		BehaviorScore    float64 `json:"behaviorScore"`
		InteractionScore float64 `json:"interactionScore"`
		TotalHRScore     float64 `json:"totalHRScore"`
	}

	TrackSummary struct {
		TrackID      string `json:"trackId"`
		TrackName    string `json:"trackName"`
		Committee    string `json:"committee"`
		CoursesCount int    `json:"coursesCount"`
	}

	MemberStats struct {
		MemberID    string         `json:"memberId"`
		Name        string         `json:"name"`
		Email       string         `json:"email"`
		Committee   string         `json:"committee"`
		Role        string         `json:"role"`
		OverallRate float64        `json:"overallRate"`
		TaskStats   TaskStats      `json:"taskStats"`
		AvgTaskRate float64        `json:"avgTaskRate"`
		HRRating    *HRSummary     `json:"hrRating"`
		TracksCount int            `json:"tracksCount"`
		Tracks      []TrackSummary `json:"tracks"`
	}

	DashboardSummary struct {
		TotalMembers        int     `json:"totalMembers"`
		AvgOverallRate      float64 `json:"avgOverallRate"`
		AvgTaskRate         float64 `json:"avgTaskRate"`
		TotalTasks          int     `json:"totalTasks"`
		TotalCompletedTasks int     `json:"totalCompletedTasks"`
		TotalPendingTasks   int     `json:"totalPendingTasks"`
		MembersWithHRRating int     `json:"membersWithHRRating"`
	}

	AppliedFilters struct {
		Committee string `json:"committee"`
		Month     string `json:"month"`
	}

	Dashboard struct {
		Members []MemberStats    `json:"members"`
		Summary DashboardSummary `json:"summary"`
		Filters AppliedFilters   `json:"filters"`
	}
)

type HRRatingResult struct {
	MemberID   string  `json:"memberId"`
	MemberName string  `json:"memberName"`
	Month      string  `json:"month"`
	TotalScore float64 `json:"totalScore"`
	Updated    bool    `json:"updated"`
}

type (
	MemberProfile struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Email       string   `json:"email"`
		Committee   string   `json:"committee"`
		Role        string   `json:"role"`
		OverallRate *float64 `json:"overallRate"`
	}

	TaskRecord struct {
		ID                 string           `json:"id"`
		Title              string           `json:"title"`
		SubmissionDate     *time.Time       `json:"submissionDate"`
		Rate               *float64         `json:"rate"`
		HeadEvaluation     *float64         `json:"headEvaluation"`
		DeadlineEvaluation *float64         `json:"deadlineEvaluation"`
		Status             member.TaskState `json:"status"`
	}

	HRRecord struct {
		Month            string  `json:"month"`
		SocialScore      float64 `json:"socialScore"`
		BehaviorScore    float64 `json:"behaviorScore"`
		InteractionScore float64 `json:"interactionScore"`
		TotalScore       float64 `json:"totalScore"`
	}

	HistorySummary struct {
		TotalTasks     int     `json:"totalTasks"`
		CompletedTasks int     `json:"completedTasks"`
		AvgTaskRate    float64 `json:"avgTaskRate"`
		TotalHRRatings int     `json:"totalHRRatings"`
		AvgHRScore     float64 `json:"avgHRScore"`
	}

	History struct {
		Member          MemberProfile  `json:"member"`
		TaskHistory     []TaskRecord   `json:"taskHistory"`
		HRRatingHistory []HRRecord     `json:"hrRatingHistory"`
		Summary         HistorySummary `json:"summary"`
	}
)

type (
	CommitteeStats struct {
		TotalMembers          int     `json:"totalMembers"`
		Heads                 int     `json:"heads"`
		RegularMembers        int     `json:"regularMembers"`
		AvgOverallRate        float64 `json:"avgOverallRate"`
		TotalTasks            int     `json:"totalTasks"`
		CompletedTasks        int     `json:"completedTasks"`
		AvgTaskCompletionRate float64 `json:"avgTaskCompletionRate"` // percent
	}

	Performer struct {
		Rank           int     `json:"rank"`
		MemberID       string  `json:"memberId"`
		Name           string  `json:"name"`
		Email          string  `json:"email"`
		Rate           float64 `json:"rate"`
		CompletedTasks int     `json:"completedTasks"`
	}

	CommitteeReport struct {
		Committee     string         `json:"committee"`
		Stats         CommitteeStats `json:"stats"`
		TopPerformers []Performer    `json:"topPerformers"`
	}
)
