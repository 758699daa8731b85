package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core/member"
)

type memberRepository struct {
	db *memberTable
}

var _ member.Repository = (*memberRepository)(nil)

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db.member}
}

func (repo *memberRepository) CreateMember(_ context.Context, m member.Member) (member.Member, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.table {
		if existing.Email == m.Email {
			return member.Member{}, member.ErrEmailExists
		}
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	stored := cloneMember(m)
	repo.db.table[m.ID] = &stored
	repo.db.order = append(repo.db.order, m.ID)
	return cloneMember(stored), nil
}

func (repo *memberRepository) GetMember(_ context.Context, filter member.GetFilter) (member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if m, ok := repo.db.table[filter.ID]; ok && (filter.Email == "" || m.Email == filter.Email) {
			return cloneMember(*m), nil
		}
		return member.Member{}, member.ErrNotFound
	}
	if filter.Email != "" {
		for _, id := range repo.db.order {
			if m := repo.db.table[id]; m.Email == filter.Email {
				return cloneMember(*m), nil
			}
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) QueryMembers(_ context.Context, filter member.QueryFilter) ([]member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	members := make([]member.Member, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		if m := repo.db.table[id]; filter.Match(*m) {
			members = append(members, cloneMember(*m))
		}
	}
	return members, nil
}

func (repo *memberRepository) UpdateMember(_ context.Context, m member.Member) (member.Member, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[m.ID]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	for id, existing := range repo.db.table {
		if id != m.ID && existing.Email == m.Email {
			return member.Member{}, member.ErrEmailExists
		}
	}
	// the inbox is only written through AppendMessage
	m.Messages = orig.Messages
	m.CreatedAt = orig.CreatedAt
	stored := cloneMember(m)
	repo.db.table[m.ID] = &stored
	return cloneMember(stored), nil
}

func (repo *memberRepository) AppendMessage(_ context.Context, memberID string, msg member.Message) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m, ok := repo.db.table[memberID]
	if !ok {
		return member.ErrNotFound
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

func (repo *memberRepository) DeleteMember(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}

// cloneMember deep copies m so callers never share memory with the table.
func cloneMember(m member.Member) member.Member {
	c := m
	if m.Rate != nil {
		rate := *m.Rate
		c.Rate = &rate
	}
	if m.PasswordHash != nil {
		c.PasswordHash = append([]byte(nil), m.PasswordHash...)
	}
	if m.Tasks != nil {
		c.Tasks = make([]member.Task, len(m.Tasks))
		for i, t := range m.Tasks {
			if t.Submission != nil {
				s := *t.Submission
				t.Submission = &s
			}
			if t.Evaluation != nil {
				e := *t.Evaluation
				t.Evaluation = &e
			}
			c.Tasks[i] = t
		}
	}
	if m.HRRatings != nil {
		c.HRRatings = append([]member.HRRating(nil), m.HRRatings...)
	}
	if m.Messages != nil {
		c.Messages = append([]member.Message(nil), m.Messages...)
	}
	if m.StartedTracks != nil {
		c.StartedTracks = make([]member.TrackProgress, len(m.StartedTracks))
		for i, p := range m.StartedTracks {
			p.Courses = append([]string(nil), p.Courses...)
			c.StartedTracks[i] = p
		}
	}
	return c
}
