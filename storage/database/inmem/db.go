// Package inmemdb keeps documents in process memory. It backs the API in dev mode and the tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/track"
)

type (
	DB struct {
		member       *memberTable
		track        *trackTable
		announcement *announcementTable
	}

	memberTable struct {
		table map[string]*member.Member
		order []string // ids by creation
		mutex sync.RWMutex
	}

	trackTable struct {
		table map[string]*track.Track
		order []string
		mutex sync.RWMutex
	}

	announcementTable struct {
		table map[string]*track.Announcement
		order []string
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		member:       &memberTable{table: make(map[string]*member.Member)},
		track:        &trackTable{table: make(map[string]*track.Track)},
		announcement: &announcementTable{table: make(map[string]*track.Announcement)},
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
