package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core/track"
)

type announcementRepository struct {
	db *announcementTable
}

var _ track.AnnouncementRepository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) track.AnnouncementRepository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a track.Announcement) (track.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	stored := cloneAnnouncement(a)
	repo.db.table[a.ID] = &stored
	repo.db.order = append(repo.db.order, a.ID)
	return cloneAnnouncement(stored), nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id string) (track.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return cloneAnnouncement(*a), nil
	}
	return track.Announcement{}, track.ErrAnnouncementNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context, filter track.AnnouncementFilter) ([]track.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	anns := make([]track.Announcement, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		if a := repo.db.table[id]; filter.TrackID == "" || a.TrackID == filter.TrackID {
			anns = append(anns, cloneAnnouncement(*a))
		}
	}
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, a track.Announcement) (track.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[a.ID]
	if !ok {
		return track.Announcement{}, track.ErrAnnouncementNotFound
	}
	a.CreatedAt = orig.CreatedAt
	stored := cloneAnnouncement(a)
	repo.db.table[a.ID] = &stored
	return cloneAnnouncement(stored), nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}

func (repo *announcementRepository) DeleteExpiredAnnouncements(_ context.Context, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	order := repo.db.order[:0]
	for _, id := range repo.db.order {
		if repo.db.table[id].Expired(at) {
			delete(repo.db.table, id)
			continue
		}
		order = append(order, id)
	}
	repo.db.order = order
	return nil
}

func cloneAnnouncement(a track.Announcement) track.Announcement {
	c := a
	if a.ExpiresAt != nil {
		exp := *a.ExpiresAt
		c.ExpiresAt = &exp
	}
	return c
}
