package rating

import (
	"sort"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/track"
)

func statsOf(m member.Member, month string, tracks map[string]track.Track) MemberStats {
	ts := member.StatsOf(m.Tasks)
	ms := MemberStats{
		MemberID:  m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Committee: m.Committee,
		Role:      m.Role,
		TaskStats: TaskStats{
			Total:     ts.Total,
			Completed: ts.Completed,
			Pending:   ts.Pending,
			Submitted: ts.Submitted,
		},
		AvgTaskRate: core.Round2(ts.AverageRate),
		Tracks:      make([]TrackSummary, 0, len(m.StartedTracks)),
	}
	if m.Rate != nil {
		ms.OverallRate = *m.Rate
	}
	if r, ok := m.HRRatingFor(month); ok {
		ms.HRRating = &HRSummary{
			Month:            r.Month,
			SocialScore:      r.SocialScore,
			BehaviorScore:    r.BehaviorScore,
			InteractionScore: r.InteractionScore,
			TotalHRScore:     r.Total(),
		}
	}
	for _, p := range m.StartedTracks {
		t, ok := tracks[p.TrackID]
		if !ok { // deleted track
			continue
		}
		ms.Tracks = append(ms.Tracks, TrackSummary{
			TrackID:      t.ID,
			TrackName:    t.Name,
			Committee:    t.Committee,
			CoursesCount: len(p.Courses),
		})
	}
	ms.TracksCount = len(ms.Tracks)
	return ms
}

func summarize(stats []MemberStats) DashboardSummary {
	sum := DashboardSummary{TotalMembers: len(stats)}
	overall := make([]float64, 0, len(stats))
	taskRates := make([]float64, 0, len(stats))
	for _, ms := range stats {
		overall = append(overall, ms.OverallRate)
		taskRates = append(taskRates, ms.AvgTaskRate)
		sum.TotalTasks += ms.TaskStats.Total
		sum.TotalCompletedTasks += ms.TaskStats.Completed
		sum.TotalPendingTasks += ms.TaskStats.Pending
		if ms.HRRating != nil {
			sum.MembersWithHRRating++
		}
	}
	sum.AvgOverallRate = core.Mean(overall)
	sum.AvgTaskRate = core.Mean(taskRates)
	return sum
}

// TopPerformers ranks the members having a rate, highest first, and keeps the first n.
// Members with equal rates keep their input order.
func TopPerformers(members []member.Member, n int) []Performer {
	rated := make([]member.Member, 0, len(members))
	for _, m := range members {
		if m.Rate != nil {
			rated = append(rated, m)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool { return *rated[i].Rate > *rated[j].Rate })
	if len(rated) > n {
		rated = rated[:n]
	}

	performers := make([]Performer, 0, len(rated))
	for i, m := range rated {
		performers = append(performers, Performer{
			Rank:           i + 1,
			MemberID:       m.ID,
			Name:           m.Name,
			Email:          m.Email,
			Rate:           *m.Rate,
			CompletedTasks: member.StatsOf(m.Tasks).Completed,
		})
	}
	return performers
}

func historyOf(m member.Member) History {
	h := History{
		Member: MemberProfile{
			ID:          m.ID,
			Name:        m.Name,
			Email:       m.Email,
			Committee:   m.Committee,
			Role:        m.Role,
			OverallRate: m.Rate,
		},
		TaskHistory:     make([]TaskRecord, 0, len(m.Tasks)),
		HRRatingHistory: make([]HRRecord, 0, len(m.HRRatings)),
	}

	for _, t := range m.Tasks {
		rec := TaskRecord{ID: t.ID, Title: t.Title, Status: t.State()}
		if s := t.Submission; s != nil {
			date, deadlineEval := s.Date, s.DeadlineEvaluation
			rec.SubmissionDate = &date
			rec.DeadlineEvaluation = &deadlineEval
		}
		if e := t.Evaluation; e != nil {
			rate, headEval := e.Rate, e.HeadEvaluation
			rec.Rate = &rate
			rec.HeadEvaluation = &headEval
		}
		h.TaskHistory = append(h.TaskHistory, rec)
	}

	totals := make([]float64, 0, len(m.HRRatings))
	for _, r := range m.HRRatings {
		h.HRRatingHistory = append(h.HRRatingHistory, HRRecord{
			Month:            r.Month,
			SocialScore:      r.SocialScore,
			BehaviorScore:    r.BehaviorScore,
			InteractionScore: r.InteractionScore,
			TotalScore:       r.Total(),
		})
		totals = append(totals, r.Total())
	}

	ts := member.StatsOf(m.Tasks)
	h.Summary = HistorySummary{
		TotalTasks:     ts.Total,
		CompletedTasks: ts.Completed,
		AvgTaskRate:    ts.AverageRate,
		TotalHRRatings: len(m.HRRatings),
		AvgHRScore:     core.Mean(totals),
	}
	return h
}

func committeeStatsOf(members []member.Member) CommitteeStats {
	cs := CommitteeStats{TotalMembers: len(members)}
	rates := make([]float64, 0, len(members))
	for _, m := range members {
		switch m.Role {
		case member.RoleHead:
			cs.Heads++
		case member.RoleMember:
			cs.RegularMembers++
		}
		if m.Rate != nil {
			rates = append(rates, *m.Rate)
		}
		ts := member.StatsOf(m.Tasks)
		cs.TotalTasks += ts.Total
		cs.CompletedTasks += ts.Completed
	}
	cs.AvgOverallRate = core.Mean(rates)
	if cs.TotalTasks > 0 {
		cs.AvgTaskCompletionRate = float64(cs.CompletedTasks) / float64(cs.TotalTasks) * 100
	}
	return cs
}
