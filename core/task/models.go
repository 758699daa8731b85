package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

// NewTask contains information needed to assign a task to a member.
type NewTask struct {
	MemberID    string     `json:"memberId" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	Deadline    *time.Time `json:"deadline" validate:"required"`
	TaskURL     string     `json:"taskUrl" validate:"omitempty,url"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.MemberID = core.CleanString(nt.MemberID)
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.TaskURL = core.CleanString(nt.TaskURL)
	return validate.Struct(nt)
}

type SubmitTask struct {
	TaskID         string `json:"taskId" validate:"required"`
	SubmissionLink string `json:"submissionLink" validate:"required"`
}

func (st *SubmitTask) Validate(validate *validator.Validate) error {
	st.TaskID = core.CleanString(st.TaskID)
	st.SubmissionLink = core.CleanString(st.SubmissionLink)
	return validate.Struct(st)
}

type RateTask struct {
	MemberID       string   `json:"memberId" validate:"required"`
	TaskID         string   `json:"taskId" validate:"required"`
	HeadEvaluation *float64 `json:"headEvaluation" validate:"required,min=0,max=100"`
	Notes          string   `json:"notes"`
}

func (rt *RateTask) Validate(validate *validator.Validate) error {
	rt.MemberID = core.CleanString(rt.MemberID)
	rt.TaskID = core.CleanString(rt.TaskID)
	rt.Notes = core.CleanString(rt.Notes)
	return validate.Struct(rt)
}

type MemberHeader struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func headerOf(m member.Member) MemberHeader {
	return MemberHeader{ID: m.ID, Name: m.Name, Email: m.Email}
}

type Assignment struct {
	TaskID     string       `json:"taskId"`
	AssignedTo MemberHeader `json:"assignedTo"`
	Task       member.Task  `json:"task"`
}

type SubmissionResult struct {
	TaskID             string    `json:"taskId"`
	SubmissionLink     string    `json:"submissionLink"`
	SubmissionDate     time.Time `json:"submissionDate"`
	DeadlineEvaluation float64   `json:"deadlineEvaluation"`
}

type RatingResult struct {
	TaskID             string  `json:"taskId"`
	HeadEvaluation     float64 `json:"headEvaluation"`
	DeadlineEvaluation float64 `json:"deadlineEvaluation"`
	TotalRate          float64 `json:"totalRate"`
	Notes              string  `json:"notes"`
}

type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Submitted int `json:"submitted"`
	Completed int `json:"completed"`
}

type Overview struct {
	Tasks   []member.Task `json:"tasks"`
	Summary Summary       `json:"summary"`
}

type CompletedStats struct {
	TotalTasks           int     `json:"totalTasks"`
	CompletedTasks       int     `json:"completedTasks"`
	PendingTasks         int     `json:"pendingTasks"`
	SubmittedButNotRated int     `json:"submittedButNotRated"`
	AverageRate          float64 `json:"averageRate"`
}

type CompletedOverview struct {
	Member         MemberHeader   `json:"member"`
	CompletedTasks []member.Task  `json:"completedTasks"`
	Stats          CompletedStats `json:"stats"`
}
