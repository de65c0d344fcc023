package mail

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

// GmailFetcher is the Gmail counterpart of GraphFetcher, behind the same
// interface.
type GmailFetcher struct {
	service *gmail.Service
}

func NewGmailFetcher(ctx context.Context, credentialsJSON []byte) (*GmailFetcher, error) {
	service, err := gmail.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gmail.GmailReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("gmail fetcher: %w", err)
	}
	return &GmailFetcher{service: service}, nil
}

func (f *GmailFetcher) Fetch(ctx context.Context, since time.Time, limit int) ([]domain.EmailRecord, error) {
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	query := "in:inbox"
	if !since.IsZero() {
		query = fmt.Sprintf("in:inbox after:%d", since.Unix())
	}

	list, err := f.service.Users.Messages.List("me").
		Q(query).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("gmail list: %w", err)
	}

	records := make([]domain.EmailRecord, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := f.service.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject").
			Context(ctx).
			Do()
		if err != nil {
			// One unreadable message must not sink the batch.
			continue
		}
		record := domain.EmailRecord{
			Body:     msg.Snippet,
			Received: time.UnixMilli(msg.InternalDate),
		}
		if msg.Payload != nil {
			for _, header := range msg.Payload.Headers {
				switch header.Name {
				case "From":
					record.Sender = header.Value
				case "Subject":
					record.Subject = header.Value
				}
			}
		}
		records = append(records, record)
	}
	return records, nil
}
