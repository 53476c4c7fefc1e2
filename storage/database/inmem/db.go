// Package inmemdb holds in-memory repositories, used in tests and when running without a database.
package inmemdb

import (
	"sync"

	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
)

type (
	DB struct {
		directory *directoryTable
		states    *stateTable
		levels    *levelsTable
	}

	// directoryTable mirrors the users & groups of the host platform.
	directoryTable struct {
		users  map[int]xp.User
		groups map[int]map[int]bool // {groupID: {userID: true}}
		mutex  sync.RWMutex
	}

	stateKey struct {
		courseID int
		userID   int
	}

	stateRow struct {
		xp  int
		lvl int
	}

	stateTable struct {
		rows  map[stateKey]*stateRow
		mutex sync.RWMutex
	}

	levelsTable struct {
		infos map[int]levels.Info
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		directory: &directoryTable{users: make(map[int]xp.User), groups: make(map[int]map[int]bool)},
		states:    &stateTable{rows: make(map[stateKey]*stateRow)},
		levels:    &levelsTable{infos: make(map[int]levels.Info)},
	}
}

// AddUser creates or replaces a user of the directory.
func (db *DB) AddUser(usr xp.User) {
	db.directory.mutex.Lock()
	defer db.directory.mutex.Unlock()
	db.directory.users[usr.ID] = usr
}

func (db *DB) AddGroupMembers(groupID int, userIDs ...int) {
	db.directory.mutex.Lock()
	defer db.directory.mutex.Unlock()
	members, ok := db.directory.groups[groupID]
	if !ok {
		members = make(map[int]bool)
		db.directory.groups[groupID] = members
	}
	for _, id := range userIDs {
		members[id] = true
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	*db = *Open()
}

func (t *directoryTable) getUser(id int) (xp.User, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	usr, ok := t.users[id]
	return usr, ok
}

func (t *directoryTable) isMember(groupID, userID int) bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.groups[groupID][userID]
}
