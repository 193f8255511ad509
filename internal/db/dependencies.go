package db

import "context"

type Client interface {
	Close() error
	UpsertOffenders(ctx context.Context, offenders []*Offender) error
	GetOffenders(ctx context.Context) ([]*Offender, error)
	RecordExcommunication(ctx context.Context, event *ExcommunicationEvent) error
	GetExcommunicationEvents(ctx context.Context, userID int64) ([]*ExcommunicationEvent, error)
}
