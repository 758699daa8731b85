package notifysvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/services/email"
	"github.com/trezcool/kazi/storage/database/inmem"
	"github.com/trezcool/kazi/tests"
)

var msg = member.Message{
	Title: "Task Rated: Landing",
	Body:  "Your task has been rated. Score: 54/100. Notes: ok",
	Date:  time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
}

func TestInboxNotifier(t *testing.T) {
	repo := inmemdb.NewMemberRepository(inmemdb.Open())
	m := testutil.CreateMember(t, repo, "Amani", "amani@kazi.test", "IT", member.RoleMember, "")
	n := NewInboxNotifier(repo)

	require.NoError(t, n.Notify(context.Background(), m, msg))
	got := testutil.GetMember(t, repo, m.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, msg.Title, got.Messages[0].Title)

	err := n.Notify(context.Background(), member.Member{ID: "ghost"}, msg)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestMailNotifier(t *testing.T) {
	mailSvc := emailsvc.NewConsoleServiceMock(&core.Config{AppName: "Kazi"})
	n := NewMailNotifier(mailSvc)

	m := member.Member{ID: "m1", Name: "Amani", Email: "amani@kazi.test"}
	require.NoError(t, n.Notify(context.Background(), m, msg))
	require.Len(t, mailSvc.SentMessages, 1)
	sent := mailSvc.SentMessages[0]
	assert.Equal(t, "amani@kazi.test", sent.To[0].Address)
	assert.Equal(t, msg.Title, sent.Subject)
	assert.Equal(t, msg.Body, sent.Body)

	assert.Error(t, n.Notify(context.Background(), member.Member{ID: "m2"}, msg))
	assert.Len(t, mailSvc.SentMessages, 1)
}

func TestChain(t *testing.T) {
	failing := &testutil.Notifier{Err: errors.New("smtp down")}
	ok := &testutil.Notifier{}
	m := member.Member{ID: "m1"}

	err := Chain{failing, ok}.Notify(context.Background(), m, msg)
	require.Error(t, err)
	assert.Equal(t, "smtp down", err.Error())
	require.Len(t, ok.Sent, 1, "a failure must not stop the chain")

	inboxDown := &testutil.Notifier{Err: core.NewNotFoundError("member not found")}
	err = Chain{failing, ok, inboxDown}.Notify(context.Background(), m, msg)
	require.Error(t, err)
	assert.Equal(t, "smtp down; member not found", err.Error())
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.Len(t, multierr.Errors(err), 2)

	assert.NoError(t, Chain{ok}.Notify(context.Background(), m, msg))
	assert.NoError(t, Chain{}.Notify(context.Background(), m, msg))
}
