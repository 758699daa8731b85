package track

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

var (
	ErrNotFound       = core.NewNotFoundError("track not found")
	ErrCourseNotFound = core.NewNotFoundError("course not found")
	ErrNotTrackMember = core.NewForbiddenError("not a member of this track")

	ErrAnnouncementNotFound = core.NewNotFoundError("announcement not found")
	ErrNotCommitteeHead     = core.NewForbiddenError("not the head of this track's committee")

	ErrApplicantNotFound  = core.NewNotFoundError("applicant not found")
	ErrAlreadyApplied     = core.NewInvalidStateError("already applied to this track")
	ErrAlreadyTrackMember = core.NewInvalidStateError("already a member of this track")
	ErrApplicationClosed  = core.NewInvalidStateError("application already answered")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		CreateTrack(ctx context.Context, t Track) (Track, error)
		GetTrack(ctx context.Context, id string) (Track, error)
		// QueryTracks returns tracks in creation order.
		QueryTracks(ctx context.Context, filter QueryFilter) ([]Track, error)
		UpdateTrack(ctx context.Context, t Track) (Track, error)
		DeleteTrack(ctx context.Context, id string) error
	}

	AnnouncementRepository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncements returns announcements in creation order.
		QueryAnnouncements(ctx context.Context, filter AnnouncementFilter) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) error
		// DeleteExpiredAnnouncements removes the announcements that expired before at.
		DeleteExpiredAnnouncements(ctx context.Context, at time.Time) error
	}

	Service struct {
		repo          Repository
		announcements AnnouncementRepository
		members       member.Repository
		notifier      member.Notifier
		logger        core.Logger
	}
)

func NewService(
	repo Repository,
	announcements AnnouncementRepository,
	members member.Repository,
	notifier member.Notifier,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, announcements: announcements, members: members, notifier: notifier, logger: logger}
}

func (svc *Service) Create(ctx context.Context, actor member.Actor, nt NewTrack) (Track, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return Track{}, err
	}
	now := nowFunc()
	t := Track{
		ID:          uuid.New().String(),
		Name:        nt.Name,
		Description: nt.Description,
		Committee:   nt.Committee,
		Courses:     []Course{},
		Members:     []string{},
		Applicants:  []Applicant{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTrack(ctx, t)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Track, error) {
	filter.Committee = core.CleanString(filter.Committee)
	return svc.repo.QueryTracks(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, id string) (Track, error) {
	return svc.repo.GetTrack(ctx, id)
}

// Delete removes the track with its announcements and drops it from its members' progress.
func (svc *Service) Delete(ctx context.Context, actor member.Actor, id string) error {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return err
	}
	t, err := svc.repo.GetTrack(ctx, id)
	if err != nil {
		return errors.Wrap(err, "getting track")
	}
	for _, memberID := range t.Members {
		if err = svc.dropProgress(ctx, memberID, t.ID); err != nil {
			return errors.Wrap(err, "dropping track progress")
		}
	}

	anns, err := svc.announcements.QueryAnnouncements(ctx, AnnouncementFilter{TrackID: t.ID})
	if err != nil {
		return errors.Wrap(err, "querying track announcements")
	}
	for _, a := range anns {
		if err = svc.announcements.DeleteAnnouncement(ctx, a.ID); err != nil {
			return errors.Wrap(err, "deleting track announcement")
		}
	}
	return svc.repo.DeleteTrack(ctx, id)
}

// AddMember enrolls a member in the track. Enrolling twice is a no-op.
func (svc *Service) AddMember(ctx context.Context, actor member.Actor, trackID, memberID string) (Track, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return Track{}, err
	}
	t, err := svc.repo.GetTrack(ctx, trackID)
	if err != nil {
		return Track{}, errors.Wrap(err, "getting track")
	}
	m, err := svc.members.GetMember(ctx, member.GetFilter{ID: memberID})
	if err != nil {
		return Track{}, errors.Wrap(err, "getting member")
	}

	enrolled, err := svc.enroll(ctx, &t, m)
	if err != nil || !enrolled {
		return t, err
	}
	return svc.repo.UpdateTrack(ctx, t)
}

// enroll syncs the member's progress and adds them to t, which the caller saves when it reports true.
func (svc *Service) enroll(ctx context.Context, t *Track, m member.Member) (bool, error) {
	if m.TrackIndex(t.ID) < 0 {
		m.StartedTracks = append(m.StartedTracks, member.TrackProgress{TrackID: t.ID, Courses: []string{}})
		m.UpdatedAt = nowFunc()
		if _, err := svc.members.UpdateMember(ctx, m); err != nil {
			return false, errors.Wrap(err, "updating member")
		}
	}
	if t.HasMember(m.ID) {
		return false, nil
	}
	t.Members = append(t.Members, m.ID)
	t.UpdatedAt = nowFunc()
	return true, nil
}

func (svc *Service) RemoveMember(ctx context.Context, actor member.Actor, trackID, memberID string) (Track, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return Track{}, err
	}
	t, err := svc.repo.GetTrack(ctx, trackID)
	if err != nil {
		return Track{}, errors.Wrap(err, "getting track")
	}
	if !t.HasMember(memberID) {
		return Track{}, member.ErrNotFound
	}
	if err = svc.dropProgress(ctx, memberID, t.ID); err != nil {
		return Track{}, errors.Wrap(err, "dropping track progress")
	}

	members := make([]string, 0, len(t.Members))
	for _, id := range t.Members {
		if id != memberID {
			members = append(members, id)
		}
	}
	t.Members = members
	t.UpdatedAt = nowFunc()
	return svc.repo.UpdateTrack(ctx, t)
}

func (svc *Service) AddCourse(ctx context.Context, actor member.Actor, trackID string, nc NewCourse) (Course, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return Course{}, err
	}
	t, err := svc.repo.GetTrack(ctx, trackID)
	if err != nil {
		return Course{}, errors.Wrap(err, "getting track")
	}
	c := Course{ID: uuid.New().String(), Name: nc.Name, Description: nc.Description}
	t.Courses = append(t.Courses, c)
	t.UpdatedAt = nowFunc()
	if _, err = svc.repo.UpdateTrack(ctx, t); err != nil {
		return Course{}, errors.Wrap(err, "updating track")
	}
	return c, nil
}

// StartCourse records that the actor started a course of a track they belong to.
func (svc *Service) StartCourse(ctx context.Context, actor member.Actor, trackID, courseID string) (member.TrackProgress, error) {
	t, err := svc.repo.GetTrack(ctx, trackID)
	if err != nil {
		return member.TrackProgress{}, errors.Wrap(err, "getting track")
	}
	if !t.HasMember(actor.ID) {
		return member.TrackProgress{}, ErrNotTrackMember
	}
	if _, ok := t.Course(courseID); !ok {
		return member.TrackProgress{}, ErrCourseNotFound
	}

	m, err := svc.members.GetMember(ctx, member.GetFilter{ID: actor.ID})
	if err != nil {
		return member.TrackProgress{}, errors.Wrap(err, "getting member")
	}
	idx := m.TrackIndex(t.ID)
	if idx < 0 {
		m.StartedTracks = append(m.StartedTracks, member.TrackProgress{TrackID: t.ID})
		idx = len(m.StartedTracks) - 1
	}
	progress := &m.StartedTracks[idx]
	if progress.HasCourse(courseID) {
		return *progress, nil
	}
	progress.Courses = append(progress.Courses, courseID)
	m.UpdatedAt = nowFunc()
	if _, err = svc.members.UpdateMember(ctx, m); err != nil {
		return member.TrackProgress{}, errors.Wrap(err, "updating member")
	}
	return m.StartedTracks[idx], nil
}

// Announce stores an announcement of the track and sends it to every track member.
func (svc *Service) Announce(ctx context.Context, actor member.Actor, trackID string, na NewAnnouncement) (AnnounceResult, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return AnnounceResult{}, err
	}
	t, err := svc.repo.GetTrack(ctx, trackID)
	if err != nil {
		return AnnounceResult{}, errors.Wrap(err, "getting track")
	}
	na.TrackID = t.ID
	a, err := svc.createAnnouncement(ctx, actor, na)
	if err != nil {
		return AnnounceResult{}, err
	}

	msg := member.Message{
		Title: fmt.Sprintf("%s: %s", t.Name, a.Title),
		Body:  a.Content,
		Date:  a.CreatedAt,
	}
	var notified int
	for _, memberID := range t.Members {
		m, err := svc.members.GetMember(ctx, member.GetFilter{ID: memberID})
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("announcing track %s: member %s not found", t.ID, memberID), err, actor.Member)
			continue
		}
		if err = svc.notifier.Notify(ctx, m, msg); err != nil {
			svc.logger.Error("announcing track: "+err.Error(), err, actor.Member)
			continue
		}
		notified++
	}
	return AnnounceResult{Announcement: a, Notified: notified}, nil
}

func (svc *Service) dropProgress(ctx context.Context, memberID, trackID string) error {
	m, err := svc.members.GetMember(ctx, member.GetFilter{ID: memberID})
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return nil
		}
		return err
	}
	idx := m.TrackIndex(trackID)
	if idx < 0 {
		return nil
	}
	m.StartedTracks = append(m.StartedTracks[:idx], m.StartedTracks[idx+1:]...)
	m.UpdatedAt = nowFunc()
	_, err = svc.members.UpdateMember(ctx, m)
	return err
}
