package rating

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/track"
)

var (
	ErrEmptyCommittee = core.NewNotFoundError("no members found in this committee")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

// Service aggregates tasks and HR ratings into dashboards. It only writes HR ratings.
type Service struct {
	members  member.Repository
	tracks   track.Repository
	notifier member.Notifier
	logger   core.Logger
}

func NewService(members member.Repository, tracks track.Repository, notifier member.Notifier, logger core.Logger) *Service {
	return &Service{members: members, tracks: tracks, notifier: notifier, logger: logger}
}

// Dashboard summarizes every accepted member, optionally restricted to a committee.
// The HR rating shown is the one of filter.Month, or the latest one.
func (svc *Service) Dashboard(ctx context.Context, actor member.Actor, filter DashboardFilter) (Dashboard, error) {
	if err := actor.Require(member.PermViewDashboard); err != nil {
		return Dashboard{}, err
	}
	members, err := svc.members.QueryMembers(ctx, member.QueryFilter{
		Committee:    filter.Committee,
		ExcludeRoles: []string{member.RoleNotAccepted},
	})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying members")
	}
	tracks, err := svc.startedTracks(ctx, members)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying tracks")
	}

	stats := make([]MemberStats, 0, len(members))
	for _, m := range members {
		stats = append(stats, statsOf(m, filter.Month, tracks))
	}

	applied := AppliedFilters{Committee: filter.Committee, Month: filter.Month}
	if applied.Committee == "" {
		applied.Committee = allCommittees
	}
	if applied.Month == "" {
		applied.Month = latestMonth
	}
	return Dashboard{Members: stats, Summary: summarize(stats), Filters: applied}, nil
}

// SubmitHRRating records the member's rating for the month, replacing any previous one.
func (svc *Service) SubmitHRRating(ctx context.Context, actor member.Actor, nr NewHRRating) (HRRatingResult, error) {
	if err := actor.Require(member.PermRateHR); err != nil {
		return HRRatingResult{}, err
	}
	m, err := svc.members.GetMember(ctx, member.GetFilter{ID: nr.MemberID})
	if err != nil {
		return HRRatingResult{}, errors.Wrap(err, "getting member")
	}

	now := nowFunc()
	r := member.HRRating{
		Month:            nr.Month,
		MemberID:         m.ID,
		SocialScore:      *nr.SocialScore,
		BehaviorScore:    *nr.BehaviorScore,
		InteractionScore: *nr.InteractionScore,
		RatedAt:          now,
	}
	updated := m.UpsertHRRating(r)
	m.UpdatedAt = now
	if m, err = svc.members.UpdateMember(ctx, m); err != nil {
		return HRRatingResult{}, errors.Wrap(err, "updating member")
	}

	msg := member.Message{
		Title: "HR Rating for " + r.Month,
		Body: fmt.Sprintf(
			"Your HR rating for %s has been submitted. Total Score: %g/300. Social: %g, Behavior: %g, Interaction: %g",
			r.Month, r.Total(), r.SocialScore, r.BehaviorScore, r.InteractionScore,
		),
		Date: now,
	}
	if err = svc.notifier.Notify(ctx, m, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("notifying member %s: %v", m.ID, err), err, actor.Member)
	}

	return HRRatingResult{
		MemberID:   m.ID,
		MemberName: m.Name,
		Month:      r.Month,
		TotalScore: r.Total(),
		Updated:    updated,
	}, nil
}

// History returns a member's task and HR rating history. Members may read their own; heads anyone's.
func (svc *Service) History(ctx context.Context, actor member.Actor, memberID string) (History, error) {
	if memberID != actor.ID {
		if err := actor.Require(member.PermViewAnyHistory); err != nil {
			return History{}, err
		}
	}
	m, err := svc.members.GetMember(ctx, member.GetFilter{ID: memberID})
	if err != nil {
		return History{}, errors.Wrap(err, "getting member")
	}
	return historyOf(m), nil
}

func (svc *Service) CommitteePerformance(ctx context.Context, actor member.Actor, committee string) (CommitteeReport, error) {
	if err := actor.Require(member.PermViewDashboard); err != nil {
		return CommitteeReport{}, err
	}
	committee = core.CleanString(committee)
	members, err := svc.members.QueryMembers(ctx, member.QueryFilter{
		Committee:    committee,
		ExcludeRoles: []string{member.RoleNotAccepted},
	})
	if err != nil {
		return CommitteeReport{}, errors.Wrap(err, "querying members")
	}
	if len(members) == 0 {
		return CommitteeReport{}, ErrEmptyCommittee
	}
	return CommitteeReport{
		Committee:     committee,
		Stats:         committeeStatsOf(members),
		TopPerformers: TopPerformers(members, topN),
	}, nil
}

// startedTracks loads the tracks referenced by the members' progress, keyed by id.
func (svc *Service) startedTracks(ctx context.Context, members []member.Member) (map[string]track.Track, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, m := range members {
		for _, p := range m.StartedTracks {
			if !seen[p.TrackID] {
				seen[p.TrackID] = true
				ids = append(ids, p.TrackID)
			}
		}
	}
	tracks := make(map[string]track.Track, len(ids))
	if len(ids) == 0 {
		return tracks, nil
	}
	found, err := svc.tracks.QueryTracks(ctx, track.QueryFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, t := range found {
		tracks[t.ID] = t
	}
	return tracks, nil
}
