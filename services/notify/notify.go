// Package notifysvc delivers member notifications to their inbox and by email.
package notifysvc

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

type inboxNotifier struct {
	repo member.Repository
}

var _ member.Notifier = (*inboxNotifier)(nil)

// NewInboxNotifier appends notifications to the recipient's stored messages.
func NewInboxNotifier(repo member.Repository) member.Notifier {
	return &inboxNotifier{repo: repo}
}

func (n *inboxNotifier) Notify(ctx context.Context, recipient member.Member, msg member.Message) error {
	if err := n.repo.AppendMessage(ctx, recipient.ID, msg); err != nil {
		return errors.Wrap(err, "appending message")
	}
	return nil
}

type mailNotifier struct {
	mailSvc core.EmailService
}

var _ member.Notifier = (*mailNotifier)(nil)

// NewMailNotifier emails notifications. Sending is asynchronous: only invalid recipients fail.
func NewMailNotifier(mailSvc core.EmailService) member.Notifier {
	return &mailNotifier{mailSvc: mailSvc}
}

func (n *mailNotifier) Notify(_ context.Context, recipient member.Member, msg member.Message) error {
	if recipient.Email == "" {
		return errors.Errorf("member %s has no email", recipient.ID)
	}
	n.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: recipient.Name, Address: recipient.Email}},
		Subject: msg.Title,
		Body:    msg.Body,
	})
	return nil
}

// Chain notifies through every notifier, even after a failure, and reports all failures at once.
type Chain []member.Notifier

var _ member.Notifier = (Chain)(nil)

func (c Chain) Notify(ctx context.Context, recipient member.Member, msg member.Message) error {
	var err error
	for _, n := range c {
		err = multierr.Append(err, n.Notify(ctx, recipient, msg))
	}
	return err
}
