package push

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Sender delivers a push message to a single device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type fcmSender struct {
	client *messaging.Client
}

// NewFCMSender builds a sender on Firebase Cloud Messaging. credentialsFile
// may be empty, in which case application default credentials are used.
func NewFCMSender(ctx context.Context, projectID, credentialsFile string) (Sender, error) {
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is not set")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &fcmSender{client: client}, nil
}

func (s *fcmSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return errors.New("empty device token")
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	_, err := s.client.Send(ctx, msg)
	return err
}

// Disabled is used when Firebase is not configured; every send succeeds
// without doing anything.
type Disabled struct{}

func (Disabled) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}
