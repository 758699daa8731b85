package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/track"
)

// RunMemberRepositoryTests runs the behaviour every member.Repository must have against a fresh repo.
func RunMemberRepositoryTests(t *testing.T, newRepo func(t *testing.T) member.Repository) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		m := CreateMember(t, repo, "Amani", "amani@kazi.test", "IT", member.RoleMember, "Tr1cky-Pass", base)
		assert.NotEmpty(t, m.ID)

		byID := GetMember(t, repo, m.ID)
		assert.Equal(t, "amani@kazi.test", byID.Email)
		assert.NoError(t, byID.CheckPassword("Tr1cky-Pass"))
		assert.Nil(t, byID.Rate)
		assert.True(t, base.Equal(byID.CreatedAt))

		byEmail, err := repo.GetMember(ctx, member.GetFilter{Email: "amani@kazi.test"})
		require.NoError(t, err)
		assert.Equal(t, m.ID, byEmail.ID)

		_, err = repo.GetMember(ctx, member.GetFilter{ID: "6b1d5d6e-1d3c-4c9e-9a51-0f7d4a2b8c11"})
		assert.True(t, errors.Is(err, member.ErrNotFound))
		_, err = repo.GetMember(ctx, member.GetFilter{ID: "lol"})
		assert.True(t, errors.Is(err, member.ErrNotFound))

		_, err = repo.CreateMember(ctx, member.Member{Name: "Dup", Email: "amani@kazi.test", Committee: "IT", Role: member.RoleMember, CreatedAt: base, UpdatedAt: base})
		assert.Equal(t, member.ErrEmailExists, err)
	})

	t.Run("query keeps registration order", func(t *testing.T) {
		repo := newRepo(t)
		a := CreateMember(t, repo, "A", "a@kazi.test", "IT", member.RoleHead, "", base)
		b := CreateMember(t, repo, "B", "b@kazi.test", "HR", member.RoleMember, "", base.Add(time.Minute))
		c := CreateMember(t, repo, "C", "c@kazi.test", "IT", member.RoleNotAccepted, "", base.Add(2*time.Minute))

		all, err := repo.QueryMembers(ctx, member.QueryFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID, c.ID}, memberIDs(all))

		it, err := repo.QueryMembers(ctx, member.QueryFilter{Committee: "IT", ExcludeRoles: []string{member.RoleNotAccepted}})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, memberIDs(it))

		roles, err := repo.QueryMembers(ctx, member.QueryFilter{Roles: []string{member.RoleMember, member.RoleNotAccepted}})
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID, c.ID}, memberIDs(roles))

		none, err := repo.QueryMembers(ctx, member.QueryFilter{Committee: "Media"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update keeps the inbox", func(t *testing.T) {
		repo := newRepo(t)
		m := CreateMember(t, repo, "A", "a@kazi.test", "IT", member.RoleMember, "", base)
		require.NoError(t, repo.AppendMessage(ctx, m.ID, member.Message{Title: "hello", Date: base}))

		rate := 72.5
		deadline := base.Add(72 * time.Hour)
		m.Rate = &rate
		m.Tasks = []member.Task{{ID: "t1", Title: "Landing", Deadline: deadline, HeadPercent: 50, DeadlinePercent: 20}}
		require.NoError(t, m.Tasks[0].Submit("https://git.example/pr/1", deadline))
		m.HRRatings = []member.HRRating{{Month: "2025-03", SocialScore: 80, BehaviorScore: 70, InteractionScore: 60}}
		m.StartedTracks = []member.TrackProgress{{TrackID: "tr1", Courses: []string{"c1"}}}
		m.Messages = nil
		m.UpdatedAt = base.Add(time.Hour)
		UpdateMember(t, repo, m)

		got := GetMember(t, repo, m.ID)
		require.NotNil(t, got.Rate)
		assert.Equal(t, 72.5, *got.Rate)
		require.Len(t, got.Tasks, 1)
		assert.Equal(t, member.TaskSubmitted, got.Tasks[0].State())
		assert.Equal(t, 20.0, got.Tasks[0].Submission.DeadlineEvaluation)
		assert.Equal(t, 210.0, got.HRRatings[0].Total())
		assert.True(t, got.StartedTracks[0].HasCourse("c1"))
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "hello", got.Messages[0].Title)
		assert.True(t, base.Equal(got.CreatedAt))

		_, err := repo.UpdateMember(ctx, member.Member{ID: "6b1d5d6e-1d3c-4c9e-9a51-0f7d4a2b8c11", Email: "x@kazi.test"})
		assert.True(t, errors.Is(err, member.ErrNotFound))

		other := CreateMember(t, repo, "B", "b@kazi.test", "IT", member.RoleMember, "", base)
		other.Email = "a@kazi.test"
		_, err = repo.UpdateMember(ctx, other)
		assert.Equal(t, member.ErrEmailExists, err)
	})

	t.Run("append message and delete", func(t *testing.T) {
		repo := newRepo(t)
		m := CreateMember(t, repo, "A", "a@kazi.test", "IT", member.RoleMember, "", base)
		for _, title := range []string{"one", "two"} {
			require.NoError(t, repo.AppendMessage(ctx, m.ID, member.Message{Title: title, Date: base}))
		}
		got := GetMember(t, repo, m.ID)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "two", got.Messages[1].Title)

		assert.True(t, errors.Is(repo.AppendMessage(ctx, "6b1d5d6e-1d3c-4c9e-9a51-0f7d4a2b8c11", member.Message{}), member.ErrNotFound))

		require.NoError(t, repo.DeleteMember(ctx, m.ID))
		_, err := repo.GetMember(ctx, member.GetFilter{ID: m.ID})
		assert.True(t, errors.Is(err, member.ErrNotFound))
	})
}

// RunTrackRepositoryTests runs the behaviour every track.Repository must have against a fresh repo.
func RunTrackRepositoryTests(t *testing.T, newRepo func(t *testing.T) track.Repository) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	memberID := "0e4b6a8e-4c52-4f0b-9d77-2f1b3c4d5e6f"

	repo := newRepo(t)
	backend, err := repo.CreateTrack(ctx, track.Track{Name: "Backend", Committee: "IT", CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)
	design, err := repo.CreateTrack(ctx, track.Track{Name: "Design", Committee: "Media", CreatedAt: base.Add(time.Minute), UpdatedAt: base})
	require.NoError(t, err)

	got, err := repo.GetTrack(ctx, backend.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend", got.Name)
	assert.Empty(t, got.Courses)
	assert.Empty(t, got.Members)

	assert.Empty(t, got.Applicants)

	respondedAt := base.Add(2 * time.Hour)
	got.Courses = append(got.Courses, track.Course{ID: "c1", Name: "Go"})
	got.Members = append(got.Members, memberID)
	got.Applicants = append(got.Applicants, track.Applicant{
		MemberID: memberID, Status: track.ApplicationAccepted, AppliedAt: base, RespondedAt: &respondedAt,
	})
	got.UpdatedAt = base.Add(time.Hour)
	updated, err := repo.UpdateTrack(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, []string{memberID}, updated.Members)
	require.Len(t, updated.Applicants, 1)
	assert.Equal(t, track.ApplicationAccepted, updated.Applicants[0].Status)
	require.NotNil(t, updated.Applicants[0].RespondedAt)
	assert.True(t, respondedAt.Equal(*updated.Applicants[0].RespondedAt))
	c, ok := updated.Course("c1")
	assert.True(t, ok)
	assert.Equal(t, "Go", c.Name)

	all, err := repo.QueryTracks(ctx, track.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, backend.ID, all[0].ID)

	media, err := repo.QueryTracks(ctx, track.QueryFilter{Committee: "Media"})
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, design.ID, media[0].ID)

	byIDs, err := repo.QueryTracks(ctx, track.QueryFilter{IDs: []string{design.ID, "deleted"}})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, design.ID, byIDs[0].ID)

	require.NoError(t, repo.DeleteTrack(ctx, backend.ID))
	_, err = repo.GetTrack(ctx, backend.ID)
	assert.True(t, errors.Is(err, track.ErrNotFound))
	_, err = repo.UpdateTrack(ctx, got)
	assert.True(t, errors.Is(err, track.ErrNotFound))
}

// RunAnnouncementRepositoryTests runs the behaviour every track.AnnouncementRepository must have.
// newRepos returns repositories sharing a fresh store.
func RunAnnouncementRepositoryTests(
	t *testing.T,
	newRepos func(t *testing.T) (track.Repository, track.AnnouncementRepository),
) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	creatorID := "5a1c2d3e-4f50-4617-8293-a4b5c6d7e8f9"

	tracks, repo := newRepos(t)
	backend, err := tracks.CreateTrack(ctx, track.Track{Name: "Backend", Committee: "IT", CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)

	expired := base.Add(time.Hour)
	global, err := repo.CreateAnnouncement(ctx, track.Announcement{
		Title: "Welcome", Content: "Hello all", CreatorID: creatorID, CreatedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, global.ID)
	onTrack, err := repo.CreateAnnouncement(ctx, track.Announcement{
		TrackID: backend.ID, Title: "Kickoff", Content: "Monday", ExpiresAt: &expired,
		CreatorID: creatorID, CreatedAt: base.Add(time.Minute), UpdatedAt: base,
	})
	require.NoError(t, err)

	got, err := repo.GetAnnouncement(ctx, onTrack.ID)
	require.NoError(t, err)
	assert.Equal(t, backend.ID, got.TrackID)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, expired.Equal(*got.ExpiresAt))

	noTrack, err := repo.GetAnnouncement(ctx, global.ID)
	require.NoError(t, err)
	assert.Empty(t, noTrack.TrackID)
	assert.Nil(t, noTrack.ExpiresAt)

	all, err := repo.QueryAnnouncements(ctx, track.AnnouncementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, global.ID, all[0].ID)

	byTrack, err := repo.QueryAnnouncements(ctx, track.AnnouncementFilter{TrackID: backend.ID})
	require.NoError(t, err)
	require.Len(t, byTrack, 1)
	assert.Equal(t, onTrack.ID, byTrack[0].ID)

	got.Title = "Kickoff moved"
	got.ExpiresAt = nil
	got.UpdatedAt = base.Add(time.Hour)
	updated, err := repo.UpdateAnnouncement(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Kickoff moved", updated.Title)
	assert.Nil(t, updated.ExpiresAt)
	assert.True(t, got.CreatedAt.Equal(updated.CreatedAt))

	updated.ExpiresAt = &expired
	_, err = repo.UpdateAnnouncement(ctx, updated)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteExpiredAnnouncements(ctx, expired.Add(-time.Second)))
	all, err = repo.QueryAnnouncements(ctx, track.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.DeleteExpiredAnnouncements(ctx, expired.Add(time.Second)))
	_, err = repo.GetAnnouncement(ctx, onTrack.ID)
	assert.True(t, errors.Is(err, track.ErrAnnouncementNotFound))

	require.NoError(t, repo.DeleteAnnouncement(ctx, global.ID))
	_, err = repo.GetAnnouncement(ctx, global.ID)
	assert.True(t, errors.Is(err, track.ErrAnnouncementNotFound))
	_, err = repo.UpdateAnnouncement(ctx, noTrack)
	assert.True(t, errors.Is(err, track.ErrAnnouncementNotFound))
}

func memberIDs(members []member.Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}
