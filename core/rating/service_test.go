package rating_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/rating"
	"github.com/trezcool/kazi/core/track"
	"github.com/trezcool/kazi/storage/database/inmem"
	"github.com/trezcool/kazi/tests"
)

type fixture struct {
	members  member.Repository
	tracks   track.Repository
	notifier *testutil.Notifier
	svc      *rating.Service
	head     member.Actor
}

func setup(t *testing.T) *fixture {
	db := inmemdb.Open()
	f := &fixture{
		members:  inmemdb.NewMemberRepository(db),
		tracks:   inmemdb.NewTrackRepository(db),
		notifier: &testutil.Notifier{},
	}
	f.svc = rating.NewService(f.members, f.tracks, f.notifier, &testutil.Logger{})
	f.head = member.NewActor(testutil.CreateMember(t, f.members, "Head", "head@kazi.test", "IT", member.RoleHead, ""))
	return f
}

func completedTask(rate float64) member.Task {
	return member.Task{
		Submission: &member.Submission{Link: "https://x", DeadlineEvaluation: 20},
		Evaluation: &member.Evaluation{HeadEvaluation: 100, Rate: rate},
	}
}

func withRate(m member.Member, rate float64) member.Member {
	m.Rate = &rate
	return m
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("head required", func(t *testing.T) {
		f := setup(t)
		m := testutil.CreateMember(t, f.members, "M", "m@kazi.test", "IT", member.RoleMember, "")
		_, err := f.svc.Dashboard(ctx, member.NewActor(m), rating.DashboardFilter{})
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("empty committee yields zero averages", func(t *testing.T) {
		f := setup(t)
		got, err := f.svc.Dashboard(ctx, f.head, rating.DashboardFilter{Committee: "Media"})
		require.NoError(t, err)
		assert.Empty(t, got.Members)
		assert.Equal(t, rating.DashboardSummary{}, got.Summary)
		assert.Equal(t, rating.AppliedFilters{Committee: "Media", Month: "latest"}, got.Filters)
	})

	t.Run("members stats and summary", func(t *testing.T) {
		f := setup(t)
		trk, err := f.tracks.CreateTrack(ctx, track.Track{Name: "Backend", Committee: "IT"})
		require.NoError(t, err)

		m1 := testutil.CreateMember(t, f.members, "M1", "m1@kazi.test", "IT", member.RoleMember, "")
		m1 = withRate(m1, 80)
		m1.Tasks = []member.Task{completedTask(54), completedTask(40.34), {}, {Submission: &member.Submission{Link: "https://y"}}}
		m1.HRRatings = []member.HRRating{
			{Month: "2025-01", SocialScore: 50, BehaviorScore: 60, InteractionScore: 70},
			{Month: "2025-02", SocialScore: 90, BehaviorScore: 90, InteractionScore: 90},
		}
		m1.StartedTracks = []member.TrackProgress{{TrackID: trk.ID, Courses: []string{"c1", "c2"}}, {TrackID: "deleted"}}
		testutil.UpdateMember(t, f.members, m1)

		testutil.CreateMember(t, f.members, "Applicant", "app@kazi.test", "IT", member.RoleNotAccepted, "")

		got, err := f.svc.Dashboard(ctx, f.head, rating.DashboardFilter{})
		require.NoError(t, err)
		require.Len(t, got.Members, 2) // head + m1, applicant excluded
		assert.Equal(t, rating.AppliedFilters{Committee: "all", Month: "latest"}, got.Filters)

		ms := got.Members[1]
		assert.Equal(t, m1.ID, ms.MemberID)
		assert.Equal(t, 80.0, ms.OverallRate)
		assert.Equal(t, rating.TaskStats{Total: 4, Completed: 2, Pending: 1, Submitted: 1}, ms.TaskStats)
		assert.Equal(t, 47.17, ms.AvgTaskRate)
		require.NotNil(t, ms.HRRating)
		assert.Equal(t, "2025-02", ms.HRRating.Month)
		assert.Equal(t, 270.0, ms.HRRating.TotalHRScore)
		assert.Equal(t, 1, ms.TracksCount)
		assert.Equal(t, []rating.TrackSummary{{TrackID: trk.ID, TrackName: "Backend", Committee: "IT", CoursesCount: 2}}, ms.Tracks)

		assert.Nil(t, got.Members[0].HRRating)
		assert.Equal(t, rating.DashboardSummary{
			TotalMembers:        2,
			AvgOverallRate:      40,
			AvgTaskRate:         47.17 / 2,
			TotalTasks:          4,
			TotalCompletedTasks: 2,
			TotalPendingTasks:   1,
			MembersWithHRRating: 1,
		}, got.Summary)

		byMonth, err := f.svc.Dashboard(ctx, f.head, rating.DashboardFilter{Month: "2025-01"})
		require.NoError(t, err)
		assert.Equal(t, 180.0, byMonth.Members[1].HRRating.TotalHRScore)
		assert.Equal(t, "2025-01", byMonth.Filters.Month)

		unknownMonth, err := f.svc.Dashboard(ctx, f.head, rating.DashboardFilter{Month: "2024-12"})
		require.NoError(t, err)
		assert.Nil(t, unknownMonth.Members[1].HRRating)
		assert.Equal(t, 0, unknownMonth.Summary.MembersWithHRRating)
	})
}

func TestService_SubmitHRRating(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := testutil.CreateMember(t, f.members, "M", "m@kazi.test", "IT", member.RoleMember, "")
	nr := func(month string, score float64) rating.NewHRRating {
		return rating.NewHRRating{
			MemberID:         m.ID,
			Month:            month,
			SocialScore:      testutil.FloatPtr(score),
			BehaviorScore:    testutil.FloatPtr(score),
			InteractionScore: testutil.FloatPtr(score),
		}
	}

	t.Run("validation", func(t *testing.T) {
		validate, _ := testutil.NewValidator()
		bad := nr("2025-01", 101)
		assert.Error(t, bad.Validate(validate))
		bad = nr("2025-01", -1)
		assert.Error(t, bad.Validate(validate))
		bad = nr("January", 50)
		assert.Error(t, bad.Validate(validate))
		missing := rating.NewHRRating{MemberID: m.ID, Month: "2025-01"}
		assert.Error(t, missing.Validate(validate))
		good := nr("2025-01", 100)
		assert.NoError(t, good.Validate(validate))
	})

	t.Run("head required", func(t *testing.T) {
		_, err := f.svc.SubmitHRRating(ctx, member.NewActor(m), nr("2025-01", 50))
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("unknown member", func(t *testing.T) {
		r := nr("2025-01", 50)
		r.MemberID = "lol"
		_, err := f.svc.SubmitHRRating(ctx, f.head, r)
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})

	t.Run("upsert by month", func(t *testing.T) {
		res, err := f.svc.SubmitHRRating(ctx, f.head, nr("2025-01", 50))
		require.NoError(t, err)
		assert.False(t, res.Updated)
		assert.Equal(t, 150.0, res.TotalScore)

		_, err = f.svc.SubmitHRRating(ctx, f.head, nr("2025-02", 60))
		require.NoError(t, err)

		res, err = f.svc.SubmitHRRating(ctx, f.head, nr("2025-01", 70))
		require.NoError(t, err)
		assert.True(t, res.Updated)

		stored := testutil.GetMember(t, f.members, m.ID)
		require.Len(t, stored.HRRatings, 2)
		assert.Equal(t, "2025-01", stored.HRRatings[0].Month)
		assert.Equal(t, 210.0, stored.HRRatings[0].Total())

		n, ok := f.notifier.Last()
		require.True(t, ok)
		assert.Equal(t, "HR Rating for 2025-01", n.Msg.Title)
		assert.Contains(t, n.Msg.Body, "Total Score: 210/300")
	})
}

func TestService_History(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := testutil.CreateMember(t, f.members, "M", "m@kazi.test", "IT", member.RoleMember, "")
	other := testutil.CreateMember(t, f.members, "O", "o@kazi.test", "IT", member.RoleMember, "")
	m.Tasks = []member.Task{completedTask(50), completedTask(30), {}}
	m.HRRatings = []member.HRRating{
		{Month: "2025-01", SocialScore: 100, BehaviorScore: 100, InteractionScore: 100},
		{Month: "2025-02", SocialScore: 50, BehaviorScore: 50, InteractionScore: 50},
	}
	testutil.UpdateMember(t, f.members, m)

	t.Run("own history", func(t *testing.T) {
		got, err := f.svc.History(ctx, member.NewActor(m), m.ID)
		require.NoError(t, err)
		require.Len(t, got.TaskHistory, 3)
		assert.Equal(t, member.TaskCompleted, got.TaskHistory[0].Status)
		assert.Equal(t, member.TaskPending, got.TaskHistory[2].Status)
		assert.Nil(t, got.TaskHistory[2].Rate)
		assert.Equal(t, rating.HistorySummary{
			TotalTasks: 3, CompletedTasks: 2, AvgTaskRate: 40, TotalHRRatings: 2, AvgHRScore: 225,
		}, got.Summary)
	})

	t.Run("someone else's as member", func(t *testing.T) {
		_, err := f.svc.History(ctx, member.NewActor(other), m.ID)
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("anyone's as head", func(t *testing.T) {
		got, err := f.svc.History(ctx, f.head, other.ID)
		require.NoError(t, err)
		assert.Empty(t, got.TaskHistory)
		assert.Equal(t, rating.HistorySummary{}, got.Summary)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := f.svc.History(ctx, f.head, "lol")
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})
}

func TestService_CommitteePerformance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rates := []float64{70, 90, 70, 50, 95, 90, 10}
	created := make([]member.Member, 0, len(rates))
	for i, r := range rates {
		m := testutil.CreateMember(t, f.members, string(rune('A'+i)), string(rune('a'+i))+"@kazi.test", "IT", member.RoleMember, "")
		m = withRate(m, r)
		m.Tasks = []member.Task{completedTask(r), {}}
		created = append(created, testutil.UpdateMember(t, f.members, m))
	}
	testutil.CreateMember(t, f.members, "Unrated", "unrated@kazi.test", "IT", member.RoleVice, "")
	testutil.CreateMember(t, f.members, "Applicant", "app@kazi.test", "IT", member.RoleNotAccepted, "")

	t.Run("head required", func(t *testing.T) {
		_, err := f.svc.CommitteePerformance(ctx, member.NewActor(created[0]), "IT")
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("no members", func(t *testing.T) {
		_, err := f.svc.CommitteePerformance(ctx, f.head, "Media")
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})

	t.Run("report", func(t *testing.T) {
		got, err := f.svc.CommitteePerformance(ctx, f.head, "IT")
		require.NoError(t, err)
		assert.Equal(t, "IT", got.Committee)
		assert.Equal(t, 9, got.Stats.TotalMembers) // head + 7 + vice
		assert.Equal(t, 1, got.Stats.Heads)
		assert.Equal(t, 7, got.Stats.RegularMembers)
		assert.InDelta(t, 475.0/7, got.Stats.AvgOverallRate, 1e-9)
		assert.Equal(t, 14, got.Stats.TotalTasks)
		assert.Equal(t, 7, got.Stats.CompletedTasks)
		assert.Equal(t, 50.0, got.Stats.AvgTaskCompletionRate)

		// ties keep registration order
		wantIDs := []string{created[4].ID, created[1].ID, created[5].ID, created[0].ID, created[2].ID}
		require.Len(t, got.TopPerformers, 5)
		for i, p := range got.TopPerformers {
			assert.Equal(t, i+1, p.Rank)
			assert.Equal(t, wantIDs[i], p.MemberID)
			assert.Equal(t, 1, p.CompletedTasks)
		}
		assert.Equal(t, 95.0, got.TopPerformers[0].Rate)
	})
}

func TestTopPerformers(t *testing.T) {
	assert.Empty(t, rating.TopPerformers(nil, 5))

	r := func(f float64) *float64 { return &f }
	members := []member.Member{{ID: "a", Rate: r(10)}, {ID: "b"}, {ID: "c", Rate: r(0)}, {ID: "d", Rate: r(30)}}
	got := rating.TopPerformers(members, 5)
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].MemberID)
	assert.Equal(t, "a", got[1].MemberID)
	assert.Equal(t, "c", got[2].MemberID)
	assert.Equal(t, 3, got[2].Rank)
}
