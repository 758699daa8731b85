package member

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/scoring"
)

// TaskState is the lifecycle state of a task: Pending -> Submitted -> Completed.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskSubmitted
	TaskCompleted
)

var taskStateNames = map[TaskState]string{
	TaskPending:   "pending",
	TaskSubmitted: "submitted",
	TaskCompleted: "completed",
}

func (s TaskState) String() string {
	if name, ok := taskStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TaskState(%d)", int(s))
}

func (s TaskState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TaskState) UnmarshalText(text []byte) error {
	for state, name := range taskStateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown task state %q", text)
}

// legacy document sentinels
const (
	unsubmittedLink   = "*"
	unratedEvaluation = -1
)

var (
	ErrTaskNotFound         = core.NewNotFoundError("task not found")
	ErrTaskAlreadySubmitted = core.NewInvalidStateError("task already submitted")
	ErrTaskNotSubmitted     = core.NewInvalidStateError("task has not been submitted yet")
)

// ClassifyTask derives the state of a task stored with sentinel values:
// a "*" submission link means pending, otherwise a -1 head evaluation means submitted.
func ClassifyTask(submissionLink string, headEvaluation float64) TaskState {
	if submissionLink == unsubmittedLink {
		return TaskPending
	}
	if headEvaluation == unratedEvaluation {
		return TaskSubmitted
	}
	return TaskCompleted
}

type Submission struct {
	Link               string
	Date               time.Time
	DeadlineEvaluation float64 // frozen at submission time
}

type Evaluation struct {
	HeadEvaluation float64
	Notes          string
	Rate           float64
	RatedAt        time.Time
}

type Task struct {
	ID              string
	Title           string
	Description     string
	StartDate       time.Time
	Deadline        time.Time
	TaskURL         string
	HeadPercent     float64
	DeadlinePercent float64

	Submission *Submission // nil while pending
	Evaluation *Evaluation // nil until rated
}

func (t Task) State() TaskState {
	switch {
	case t.Submission == nil:
		return TaskPending
	case t.Evaluation == nil:
		return TaskSubmitted
	default:
		return TaskCompleted
	}
}

func (t Task) Weights() scoring.Weights {
	return scoring.Weights{HeadPercent: t.HeadPercent, DeadlinePercent: t.DeadlinePercent}
}

// Submit records the submission and freezes its deadline score. Only pending tasks can be submitted.
func (t *Task) Submit(link string, at time.Time) error {
	if t.State() != TaskPending {
		return ErrTaskAlreadySubmitted
	}
	t.Submission = &Submission{
		Link:               link,
		Date:               at,
		DeadlineEvaluation: scoring.DeadlineScore(at, t.Deadline),
	}
	return nil
}

// Rate sets (or overwrites) the head evaluation and the final rate. The submission is left untouched.
func (t *Task) Rate(headEvaluation float64, notes string, at time.Time) error {
	if t.State() == TaskPending {
		return ErrTaskNotSubmitted
	}
	t.Evaluation = &Evaluation{
		HeadEvaluation: headEvaluation,
		Notes:          notes,
		Rate:           scoring.FinalRate(headEvaluation, t.Submission.DeadlineEvaluation, t.Weights()),
		RatedAt:        at,
	}
	return nil
}

// taskDocument is the wire and storage shape of a Task, sentinels included.
type taskDocument struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	StartDate          time.Time  `json:"startDate"`
	Deadline           time.Time  `json:"deadline"`
	TaskURL            string     `json:"taskUrl"`
	HeadPercent        float64    `json:"headPercent"`
	DeadlinePercent    float64    `json:"deadlinePercent"`
	SubmissionLink     string     `json:"submissionLink"`
	SubmissionDate     *time.Time `json:"submissionDate"`
	DeadlineEvaluation *float64   `json:"deadlineEvaluation"`
	HeadEvaluation     float64    `json:"headEvaluation"`
	Rate               *float64   `json:"rate"`
	Notes              string     `json:"notes"`
	RatedAt            *time.Time `json:"ratedAt,omitempty"`
	Status             TaskState  `json:"status"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	doc := taskDocument{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		StartDate:       t.StartDate,
		Deadline:        t.Deadline,
		TaskURL:         t.TaskURL,
		HeadPercent:     t.HeadPercent,
		DeadlinePercent: t.DeadlinePercent,
		SubmissionLink:  unsubmittedLink,
		HeadEvaluation:  unratedEvaluation,
		Status:          t.State(),
	}
	if s := t.Submission; s != nil {
		date, deadlineEval := s.Date, s.DeadlineEvaluation
		doc.SubmissionLink = s.Link
		doc.SubmissionDate = &date
		doc.DeadlineEvaluation = &deadlineEval
	}
	if e := t.Evaluation; e != nil && t.Submission != nil {
		rate, ratedAt := e.Rate, e.RatedAt
		doc.HeadEvaluation = e.HeadEvaluation
		doc.Rate = &rate
		doc.Notes = e.Notes
		doc.RatedAt = &ratedAt
	}
	return json.Marshal(doc)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	doc := taskDocument{SubmissionLink: unsubmittedLink, HeadEvaluation: unratedEvaluation}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*t = Task{
		ID:              doc.ID,
		Title:           doc.Title,
		Description:     doc.Description,
		StartDate:       doc.StartDate,
		Deadline:        doc.Deadline,
		TaskURL:         doc.TaskURL,
		HeadPercent:     doc.HeadPercent,
		DeadlinePercent: doc.DeadlinePercent,
	}

	state := ClassifyTask(doc.SubmissionLink, doc.HeadEvaluation)
	if state >= TaskSubmitted {
		t.Submission = &Submission{Link: doc.SubmissionLink}
		if doc.SubmissionDate != nil {
			t.Submission.Date = *doc.SubmissionDate
		}
		if doc.DeadlineEvaluation != nil {
			t.Submission.DeadlineEvaluation = *doc.DeadlineEvaluation
		}
	}
	if state == TaskCompleted {
		t.Evaluation = &Evaluation{HeadEvaluation: doc.HeadEvaluation, Notes: doc.Notes}
		if doc.Rate != nil {
			t.Evaluation.Rate = *doc.Rate
		}
		if doc.RatedAt != nil {
			t.Evaluation.RatedAt = *doc.RatedAt
		}
	}
	return nil
}

// TaskStats counts tasks by state. AverageRate is the mean rate of completed tasks, 0 if there are none.
type TaskStats struct {
	Total       int     `json:"total"`
	Pending     int     `json:"pending"`
	Submitted   int     `json:"submitted"`
	Completed   int     `json:"completed"`
	AverageRate float64 `json:"averageRate"`
}

func StatsOf(tasks []Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	rates := make([]float64, 0, len(tasks))
	for _, t := range tasks {
		switch t.State() {
		case TaskPending:
			stats.Pending++
		case TaskSubmitted:
			stats.Submitted++
		case TaskCompleted:
			stats.Completed++
			rates = append(rates, t.Evaluation.Rate)
		}
	}
	stats.AverageRate = core.Mean(rates)
	return stats
}
