package track

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/member"
)

// AddAnnouncement stores an announcement, global or bound to na.TrackID.
// Only the head of the track's committee may announce on a track.
func (svc *Service) AddAnnouncement(ctx context.Context, actor member.Actor, na NewAnnouncement) (Announcement, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return Announcement{}, err
	}
	if na.TrackID != "" {
		t, err := svc.repo.GetTrack(ctx, na.TrackID)
		if err != nil {
			return Announcement{}, errors.Wrap(err, "getting track")
		}
		if t.Committee != actor.Committee {
			return Announcement{}, ErrNotCommitteeHead
		}
	}
	return svc.createAnnouncement(ctx, actor, na)
}

func (svc *Service) createAnnouncement(ctx context.Context, actor member.Actor, na NewAnnouncement) (Announcement, error) {
	now := nowFunc()
	a := Announcement{
		ID:        uuid.New().String(),
		TrackID:   na.TrackID,
		Title:     na.Title,
		Content:   na.Content,
		ExpiresAt: utcPtr(na.ExpiresAt),
		CreatorID: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a, err := svc.announcements.CreateAnnouncement(ctx, a)
	if err != nil {
		return Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return a, nil
}

// Announcements purges the expired announcements then lists the remaining ones,
// only those of filter.TrackID when set.
func (svc *Service) Announcements(ctx context.Context, filter AnnouncementFilter) ([]Announcement, error) {
	if filter.TrackID != "" {
		if _, err := svc.repo.GetTrack(ctx, filter.TrackID); err != nil {
			return nil, errors.Wrap(err, "getting track")
		}
	}
	if err := svc.announcements.DeleteExpiredAnnouncements(ctx, nowFunc()); err != nil {
		return nil, errors.Wrap(err, "purging expired announcements")
	}
	return svc.announcements.QueryAnnouncements(ctx, filter)
}

// UpdateAnnouncement replaces the title, content and expiry of an announcement. Its track never changes.
func (svc *Service) UpdateAnnouncement(ctx context.Context, actor member.Actor, id string, na NewAnnouncement) (Announcement, error) {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return Announcement{}, err
	}
	a, err := svc.announcements.GetAnnouncement(ctx, id)
	if err != nil {
		return Announcement{}, errors.Wrap(err, "getting announcement")
	}
	a.Title = na.Title
	a.Content = na.Content
	a.ExpiresAt = utcPtr(na.ExpiresAt)
	a.UpdatedAt = nowFunc()
	return svc.announcements.UpdateAnnouncement(ctx, a)
}

func (svc *Service) DeleteAnnouncement(ctx context.Context, actor member.Actor, id string) error {
	if err := actor.Require(member.PermManageTracks); err != nil {
		return err
	}
	if _, err := svc.announcements.GetAnnouncement(ctx, id); err != nil {
		return errors.Wrap(err, "getting announcement")
	}
	return svc.announcements.DeleteAnnouncement(ctx, id)
}
