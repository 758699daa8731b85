package sqlxrepos_test

import (
	"testing"

	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/track"
	"github.com/trezcool/kazi/storage/database/sqlx"
	"github.com/trezcool/kazi/tests"
)

func TestMemberRepository(t *testing.T) {
	testutil.RunMemberRepositoryTests(t, func(t *testing.T) member.Repository {
		return sqlxrepos.NewMemberRepository(testutil.PrepareDB(t))
	})
}

func TestTrackRepository(t *testing.T) {
	testutil.RunTrackRepositoryTests(t, func(t *testing.T) track.Repository {
		return sqlxrepos.NewTrackRepository(testutil.PrepareDB(t))
	})
}

func TestAnnouncementRepository(t *testing.T) {
	testutil.RunAnnouncementRepositoryTests(t, func(t *testing.T) (track.Repository, track.AnnouncementRepository) {
		db := testutil.PrepareDB(t)
		return sqlxrepos.NewTrackRepository(db), sqlxrepos.NewAnnouncementRepository(db)
	})
}
