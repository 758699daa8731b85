package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core/track"
)

type trackRepository struct {
	db *trackTable
}

var _ track.Repository = (*trackRepository)(nil)

func NewTrackRepository(db *DB) track.Repository {
	return &trackRepository{db: db.track}
}

func (repo *trackRepository) CreateTrack(_ context.Context, t track.Track) (track.Track, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	stored := cloneTrack(t)
	repo.db.table[t.ID] = &stored
	repo.db.order = append(repo.db.order, t.ID)
	return cloneTrack(stored), nil
}

func (repo *trackRepository) GetTrack(_ context.Context, id string) (track.Track, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return cloneTrack(*t), nil
	}
	return track.Track{}, track.ErrNotFound
}

func (repo *trackRepository) QueryTracks(_ context.Context, filter track.QueryFilter) ([]track.Track, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tracks := make([]track.Track, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		if t := repo.db.table[id]; filter.Match(*t) {
			tracks = append(tracks, cloneTrack(*t))
		}
	}
	return tracks, nil
}

func (repo *trackRepository) UpdateTrack(_ context.Context, t track.Track) (track.Track, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok {
		return track.Track{}, track.ErrNotFound
	}
	t.CreatedAt = orig.CreatedAt
	stored := cloneTrack(t)
	repo.db.table[t.ID] = &stored
	return cloneTrack(stored), nil
}

func (repo *trackRepository) DeleteTrack(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}

func cloneTrack(t track.Track) track.Track {
	c := t
	c.Courses = append([]track.Course{}, t.Courses...)
	c.Members = append([]string{}, t.Members...)
	c.Applicants = append([]track.Applicant{}, t.Applicants...)
	for i, app := range c.Applicants {
		if app.RespondedAt != nil {
			at := *app.RespondedAt
			c.Applicants[i].RespondedAt = &at
		}
	}
	return c
}
