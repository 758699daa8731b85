package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

func CreateMember(
	t *testing.T,
	repo member.Repository,
	name, email, committee, role, pwd string,
	createdAt ...time.Time,
) member.Member {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	m := member.Member{
		Name:      name,
		Email:     email,
		Committee: committee,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := m.SetPassword(pwd); err != nil {
			t.Fatalf("CreateMember() failed: %v", err)
		}
	}
	m, err := repo.CreateMember(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return m
}

// UpdateMember saves m or fails the test.
func UpdateMember(t *testing.T, repo member.Repository, m member.Member) member.Member {
	m, err := repo.UpdateMember(context.Background(), m)
	if err != nil {
		t.Fatalf("UpdateMember() failed: %v", err)
	}
	return m
}

func GetMember(t *testing.T, repo member.Repository, id string) member.Member {
	m, err := repo.GetMember(context.Background(), member.GetFilter{ID: id})
	if err != nil {
		t.Fatalf("GetMember() failed: %v", err)
	}
	return m
}

func FloatPtr(f float64) *float64 { return &f }

func TimePtr(t time.Time) *time.Time { return &t }

// NewValidator returns a validator with every custom validation registered,
// and the translator holding their messages.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	member.InitValidators(validate, translator)
	return validate, translator
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records log entries.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

type Notification struct {
	Recipient member.Member
	Msg       member.Message
}

// Notifier records notifications and fails them with Err when set.
type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
	Err  error
}

var _ member.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(_ context.Context, recipient member.Member, msg member.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, Notification{Recipient: recipient, Msg: msg})
	return nil
}

func (n *Notifier) Last() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Sent) == 0 {
		return Notification{}, false
	}
	return n.Sent[len(n.Sent)-1], true
}
