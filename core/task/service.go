package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/scoring"
)

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

// Service drives tasks through Pending -> Submitted -> Completed.
type Service struct {
	repo     member.Repository
	notifier member.Notifier
	logger   core.Logger
	weights  scoring.Weights
}

func NewService(repo member.Repository, notifier member.Notifier, logger core.Logger, conf *core.Config) *Service {
	weights := scoring.DefaultWeights
	if conf != nil && (conf.Task.HeadPercent > 0 || conf.Task.DeadlinePercent > 0) {
		weights = scoring.Weights{HeadPercent: conf.Task.HeadPercent, DeadlinePercent: conf.Task.DeadlinePercent}
	}
	return &Service{repo: repo, notifier: notifier, logger: logger, weights: weights}
}

// Assign appends a new pending task to the member's list. Every call creates a new task.
func (svc *Service) Assign(ctx context.Context, actor member.Actor, nt NewTask) (Assignment, error) {
	if err := actor.Require(member.PermAssignTasks); err != nil {
		return Assignment{}, err
	}
	m, err := svc.repo.GetMember(ctx, member.GetFilter{ID: nt.MemberID})
	if err != nil {
		return Assignment{}, errors.Wrap(err, "getting member")
	}

	now := nowFunc()
	startDate := now
	if nt.StartDate != nil {
		startDate = nt.StartDate.UTC()
	}
	t := member.Task{
		ID:              uuid.New().String(),
		Title:           nt.Title,
		Description:     nt.Description,
		StartDate:       startDate,
		Deadline:        nt.Deadline.UTC(),
		TaskURL:         nt.TaskURL,
		HeadPercent:     svc.weights.HeadPercent,
		DeadlinePercent: svc.weights.DeadlinePercent,
	}
	m.Tasks = append(m.Tasks, t)
	m.UpdatedAt = now
	if m, err = svc.repo.UpdateMember(ctx, m); err != nil {
		return Assignment{}, errors.Wrap(err, "updating member")
	}

	svc.notify(ctx, actor, m, member.Message{
		Title: "New Task Assigned: " + t.Title,
		Body: fmt.Sprintf(
			"You have been assigned a new task: %s. %s Deadline: %s",
			t.Title, t.Description, t.Deadline.Format("2006-01-02"),
		),
		Date: now,
	})

	return Assignment{TaskID: t.ID, AssignedTo: headerOf(m), Task: t}, nil
}

// Submit records the actor's submission of one of their own pending tasks.
func (svc *Service) Submit(ctx context.Context, actor member.Actor, st SubmitTask) (SubmissionResult, error) {
	m, err := svc.repo.GetMember(ctx, member.GetFilter{ID: actor.ID})
	if err != nil {
		return SubmissionResult{}, errors.Wrap(err, "getting member")
	}
	idx := m.TaskIndex(st.TaskID)
	if idx < 0 {
		return SubmissionResult{}, member.ErrTaskNotFound
	}

	now := nowFunc()
	t := &m.Tasks[idx]
	if err = t.Submit(st.SubmissionLink, now); err != nil {
		return SubmissionResult{}, err
	}
	m.UpdatedAt = now
	if _, err = svc.repo.UpdateMember(ctx, m); err != nil {
		return SubmissionResult{}, errors.Wrap(err, "updating member")
	}

	return SubmissionResult{
		TaskID:             t.ID,
		SubmissionLink:     t.Submission.Link,
		SubmissionDate:     t.Submission.Date,
		DeadlineEvaluation: t.Submission.DeadlineEvaluation,
	}, nil
}

// Rate evaluates a submitted task, or re-evaluates a completed one.
// A pending task is rejected as not submitted whoever the actor is.
func (svc *Service) Rate(ctx context.Context, actor member.Actor, rt RateTask) (RatingResult, error) {
	m, err := svc.repo.GetMember(ctx, member.GetFilter{ID: rt.MemberID})
	if err != nil {
		return RatingResult{}, errors.Wrap(err, "getting member")
	}
	idx := m.TaskIndex(rt.TaskID)
	if idx < 0 {
		return RatingResult{}, member.ErrTaskNotFound
	}
	if m.Tasks[idx].State() == member.TaskPending {
		return RatingResult{}, member.ErrTaskNotSubmitted
	}
	if err = actor.Require(member.PermRateTasks); err != nil {
		return RatingResult{}, err
	}

	now := nowFunc()
	t := &m.Tasks[idx]
	if err = t.Rate(*rt.HeadEvaluation, rt.Notes, now); err != nil {
		return RatingResult{}, err
	}
	m.UpdatedAt = now
	if m, err = svc.repo.UpdateMember(ctx, m); err != nil {
		return RatingResult{}, errors.Wrap(err, "updating member")
	}
	rated := m.Tasks[idx]

	body := fmt.Sprintf("Your task %q has been rated. Score: %s/100.", rated.Title, formatScore(rated.Evaluation.Rate))
	if notes := rated.Evaluation.Notes; notes != "" {
		body += " Notes: " + notes
	}
	svc.notify(ctx, actor, m, member.Message{Title: "Task Rated: " + rated.Title, Body: body, Date: now})

	return RatingResult{
		TaskID:             rated.ID,
		HeadEvaluation:     rated.Evaluation.HeadEvaluation,
		DeadlineEvaluation: rated.Submission.DeadlineEvaluation,
		TotalRate:          rated.Evaluation.Rate,
		Notes:              rated.Evaluation.Notes,
	}, nil
}

// MyTasks lists the actor's tasks with their derived status.
func (svc *Service) MyTasks(ctx context.Context, actor member.Actor) (Overview, error) {
	m, err := svc.repo.GetMember(ctx, member.GetFilter{ID: actor.ID})
	if err != nil {
		return Overview{}, errors.Wrap(err, "getting member")
	}
	stats := member.StatsOf(m.Tasks)
	tasks := m.Tasks
	if tasks == nil {
		tasks = []member.Task{}
	}
	return Overview{
		Tasks: tasks,
		Summary: Summary{
			Total:     stats.Total,
			Pending:   stats.Pending,
			Submitted: stats.Submitted,
			Completed: stats.Completed,
		},
	}, nil
}

// CompletedTasks lists the completed tasks of the actor, or of memberID when the actor may view member tasks.
func (svc *Service) CompletedTasks(ctx context.Context, actor member.Actor, memberID string) (CompletedOverview, error) {
	targetID := actor.ID
	if memberID != "" && memberID != actor.ID {
		if err := actor.Require(member.PermViewMemberTasks); err != nil {
			return CompletedOverview{}, err
		}
		targetID = memberID
	}
	m, err := svc.repo.GetMember(ctx, member.GetFilter{ID: targetID})
	if err != nil {
		return CompletedOverview{}, errors.Wrap(err, "getting member")
	}

	completed := make([]member.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if t.State() == member.TaskCompleted {
			completed = append(completed, t)
		}
	}
	stats := member.StatsOf(m.Tasks)
	return CompletedOverview{
		Member:         headerOf(m),
		CompletedTasks: completed,
		Stats: CompletedStats{
			TotalTasks:           stats.Total,
			CompletedTasks:       stats.Completed,
			PendingTasks:         stats.Pending,
			SubmittedButNotRated: stats.Submitted,
			AverageRate:          stats.AverageRate,
		},
	}, nil
}

// notify never fails the caller: the state transition is already persisted.
func (svc *Service) notify(ctx context.Context, actor member.Actor, recipient member.Member, msg member.Message) {
	if err := svc.notifier.Notify(ctx, recipient, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("notifying member %s: %v", recipient.ID, err), err, actor.Member)
	}
}

func formatScore(score float64) string {
	return fmt.Sprintf("%g", core.Round2(score))
}
