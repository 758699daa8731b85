package track

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/member"
)

// Apply records the actor's application to the track. A member applies once.
func (svc *Service) Apply(ctx context.Context, actor member.Actor, trackID string) (Track, error) {
	t, err := svc.repo.GetTrack(ctx, trackID)
	if err != nil {
		return Track{}, errors.Wrap(err, "getting track")
	}
	if t.HasMember(actor.ID) {
		return Track{}, ErrAlreadyTrackMember
	}
	if t.ApplicantIndex(actor.ID) >= 0 {
		return Track{}, ErrAlreadyApplied
	}

	now := nowFunc()
	t.Applicants = append(t.Applicants, Applicant{MemberID: actor.ID, Status: ApplicationPending, AppliedAt: now})
	t.UpdatedAt = now
	return svc.repo.UpdateTrack(ctx, t)
}

// Applicants lists the applications to the tracks of the actor's committee.
func (svc *Service) Applicants(ctx context.Context, actor member.Actor) ([]TrackApplicants, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return nil, err
	}
	tracks, err := svc.repo.QueryTracks(ctx, QueryFilter{Committee: actor.Committee})
	if err != nil {
		return nil, errors.Wrap(err, "querying tracks")
	}

	res := make([]TrackApplicants, 0, len(tracks))
	for _, t := range tracks {
		ta := TrackApplicants{TrackID: t.ID, Name: t.Name, Committee: t.Committee, Applicants: []ApplicantInfo{}}
		for _, app := range t.Applicants {
			m, err := svc.members.GetMember(ctx, member.GetFilter{ID: app.MemberID})
			if err != nil {
				if errors.Is(err, member.ErrNotFound) {
					continue
				}
				return nil, errors.Wrap(err, "getting applicant")
			}
			ta.Applicants = append(ta.Applicants, ApplicantInfo{Applicant: app, Name: m.Name, Email: m.Email})
		}
		res = append(res, ta)
	}
	return res, nil
}

// AcceptApplicant enrolls a pending applicant in the track.
func (svc *Service) AcceptApplicant(ctx context.Context, actor member.Actor, trackID, memberID string) (Track, error) {
	return svc.respond(ctx, actor, trackID, memberID, ApplicationAccepted)
}

func (svc *Service) RejectApplicant(ctx context.Context, actor member.Actor, trackID, memberID string) (Track, error) {
	return svc.respond(ctx, actor, trackID, memberID, ApplicationRejected)
}

func (svc *Service) respond(ctx context.Context, actor member.Actor, trackID, memberID, status string) (Track, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return Track{}, err
	}
	t, err := svc.repo.GetTrack(ctx, trackID)
	if err != nil {
		return Track{}, errors.Wrap(err, "getting track")
	}
	idx := t.ApplicantIndex(memberID)
	if idx < 0 {
		return Track{}, ErrApplicantNotFound
	}
	if t.Applicants[idx].Status != ApplicationPending {
		return Track{}, ErrApplicationClosed
	}
	m, err := svc.members.GetMember(ctx, member.GetFilter{ID: memberID})
	if err != nil {
		return Track{}, errors.Wrap(err, "getting member")
	}

	now := nowFunc()
	t.Applicants[idx].Status = status
	t.Applicants[idx].RespondedAt = &now
	t.UpdatedAt = now
	if status == ApplicationAccepted {
		if _, err = svc.enroll(ctx, &t, m); err != nil {
			return Track{}, err
		}
	}
	if t, err = svc.repo.UpdateTrack(ctx, t); err != nil {
		return Track{}, errors.Wrap(err, "updating track")
	}

	msg := member.Message{
		Title: "Track Application " + strings.Title(status),
		Body:  fmt.Sprintf("Your application for %s has been %s.", t.Name, status),
		Date:  now,
	}
	if err = svc.notifier.Notify(ctx, m, msg); err != nil {
		svc.logger.Error("notifying applicant: "+err.Error(), err, actor.Member)
	}
	return t, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
