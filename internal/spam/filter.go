// Package spam maintains a per-user offense ledger over successive update
// batches, drops messages from offenders, and escalates repeat offenders
// through warn and excommunicate states with exponential backoff.
package spam

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/tgward/internal/db"
	"github.com/iamwavecut/tgward/internal/i18n"
	"github.com/iamwavecut/tgward/internal/observability"
	"github.com/iamwavecut/tgward/internal/tg"
)

// Default notification templates.
const (
	DefaultWarnMessage   = "Please do not spam me!\n<em>You have been warned.</em>"
	DefaultExcomMessage  = "You have been excommunicated and your messages <strong>will be ignored.</strong>"
	DefaultLiftedMessage = "Your excommunication has been lifted. <em>Please do not spam me!</em>"
)

type Config struct {
	// Interval is the minimum gap between two messages from one sender
	// before the pair counts as a rate violation.
	Interval time.Duration
	// ExcomDuration is the backoff base in minutes: an excommunication
	// lasts ExcomDuration^excomCount minutes.
	ExcomDuration float64
	// FirstThreshold and SecondThreshold are the offense counts that
	// trigger a warning and an excommunication respectively.
	FirstThreshold  int
	SecondThreshold int

	ShouldWarn  bool
	ShouldExcom bool

	WarnMessage   string
	ExcomMessage  string
	LiftedMessage string

	Language string
}

// Notifier delivers an HTML notice to a user. The bot facade implements it.
type Notifier interface {
	Notify(ctx context.Context, userID int64, html string) error
}

// Store persists ledger snapshots between restarts. Optional and best-effort:
// store failures are logged and never block or corrupt filtering.
type Store interface {
	UpsertOffenders(ctx context.Context, offenders []*db.Offender) error
	GetOffenders(ctx context.Context) ([]*db.Offender, error)
	RecordExcommunication(ctx context.Context, event *db.ExcommunicationEvent) error
}

// Entry is one user's standing in the offense ledger. Entries are created
// lazily on first sighting and live as long as the filter does.
type Entry struct {
	User           tg.User
	OffenseCount   int
	Excommunicated bool
	ExcomCount     int
	ReliefTime     time.Time
}

// NotifyError wraps notification-send failures that occurred after the
// triggering ledger mutations were already committed. Re-invoking Filter
// after one is safe with respect to ledger state.
type NotifyError struct {
	err error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("spam filter notifications failed: %v", e.err)
}

func (e *NotifyError) Unwrap() error { return e.err }

type Filter struct {
	cfg      Config
	notifier Notifier
	store    Store
	ledger   map[int64]*Entry
	logger   *log.Entry
	now      func() time.Time
}

func NewFilter(cfg Config, notifier Notifier, store Store, logger *log.Entry) *Filter {
	if cfg.WarnMessage == "" {
		cfg.WarnMessage = DefaultWarnMessage
	}
	if cfg.ExcomMessage == "" {
		cfg.ExcomMessage = DefaultExcomMessage
	}
	if cfg.LiftedMessage == "" {
		cfg.LiftedMessage = DefaultLiftedMessage
	}
	return &Filter{
		cfg:      cfg,
		notifier: notifier,
		store:    store,
		ledger:   make(map[int64]*Entry),
		logger:   logger,
		now:      time.Now,
	}
}

// Start restores the ledger from the store. Implements lifecycle.Component.
func (f *Filter) Start(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	offenders, err := f.store.GetOffenders(ctx)
	if err != nil {
		return fmt.Errorf("restore offense ledger: %w", err)
	}
	for _, o := range offenders {
		f.ledger[o.UserID] = &Entry{
			User: tg.User{
				ID:        o.UserID,
				FirstName: o.FirstName,
				LastName:  o.LastName,
				UserName:  o.UserName,
			},
			OffenseCount:   o.OffenseCount,
			Excommunicated: o.Excommunicated,
			ExcomCount:     o.ExcomCount,
			ReliefTime:     o.ReliefTime,
		}
	}
	f.logger.WithField("entries", len(offenders)).Debug("restored offense ledger")
	return nil
}

// Stop snapshots the full ledger. Implements lifecycle.Component.
func (f *Filter) Stop(ctx context.Context) error {
	all := make(map[int64]bool, len(f.ledger))
	for id := range f.ledger {
		all[id] = true
	}
	f.persist(ctx, all)
	return nil
}

// Filter classifies one ordered batch of updates, mutates the ledger, emits
// escalation notifications, and returns the retained updates in original
// order. Ledger mutations are committed even when notification sends fail;
// such failures come back aggregated as a *NotifyError.
func (f *Filter) Filter(ctx context.Context, batch []tg.Update) ([]tg.Update, error) {
	done := observability.StartFilterBatch()
	now := f.now()
	touched := make(map[int64]bool)
	session := make(map[int64]bool)
	var notifyErrs []error

	for i := range batch {
		sender := batch[i].Sender()
		if sender == nil {
			continue
		}
		session[sender.ID] = true
		if _, ok := f.ledger[sender.ID]; !ok {
			f.ledger[sender.ID] = &Entry{User: *sender, ReliefTime: now}
			touched[sender.ID] = true
		}
	}

	if len(batch) == 0 {
		notifyErrs = append(notifyErrs, f.liftSweep(ctx, now, touched)...)
		f.persist(ctx, touched)
		return batch, f.finish(done, notifyErrs)
	}

	// Rate-violation scan over adjacent pairs. One increment per violating
	// pair, both pair members marked for removal. Counts of excommunicated
	// senders stay frozen until lifted.
	flagged := make([]bool, len(batch))
	for i := 0; i+1 < len(batch); i++ {
		a, b := batch[i].Sender(), batch[i+1].Sender()
		if a == nil || b == nil || a.ID != b.ID {
			continue
		}
		gap := time.Duration(batch[i+1].Date()-batch[i].Date()) * time.Second
		if gap > f.cfg.Interval {
			continue
		}
		flagged[i], flagged[i+1] = true, true
		entry := f.ledger[a.ID]
		if !entry.Excommunicated {
			entry.OffenseCount++
			touched[a.ID] = true
			observability.RecordOffense()
		}
	}

	filtered := make([]tg.Update, 0, len(batch))
	for i := range batch {
		sender := batch[i].Sender()
		if sender == nil {
			filtered = append(filtered, batch[i])
			continue
		}
		if flagged[i] || f.ledger[sender.ID].Excommunicated {
			continue
		}
		filtered = append(filtered, batch[i])
	}
	observability.RecordDroppedMessages(len(batch) - len(filtered))

	// Escalation sweep over the full ledger, restricted to senders seen in
	// this batch.
	for id, entry := range f.ledger {
		if !session[id] {
			continue
		}
		switch {
		case entry.OffenseCount >= f.cfg.SecondThreshold && !entry.Excommunicated:
			if f.cfg.ShouldExcom {
				if err := f.excommunicate(ctx, entry, now); err != nil {
					notifyErrs = append(notifyErrs, err)
				}
				touched[id] = true
			}
		case entry.OffenseCount >= f.cfg.FirstThreshold && entry.OffenseCount < f.cfg.SecondThreshold:
			if f.cfg.ShouldWarn {
				if err := f.warn(ctx, entry); err != nil {
					notifyErrs = append(notifyErrs, err)
				}
			}
		}
	}

	notifyErrs = append(notifyErrs, f.liftSweep(ctx, now, touched)...)
	f.persist(ctx, touched)

	f.logger.WithField("unfiltered", len(batch)).WithField("filtered", len(filtered)).Trace("filtered batch")
	return filtered, f.finish(done, notifyErrs)
}

func (f *Filter) finish(done func(status string), notifyErrs []error) error {
	if len(notifyErrs) == 0 {
		done("ok")
		return nil
	}
	done("notify_error")
	return &NotifyError{err: errors.Join(notifyErrs...)}
}

// liftSweep lifts every excommunication whose relief time has passed.
func (f *Filter) liftSweep(ctx context.Context, now time.Time, touched map[int64]bool) []error {
	var errs []error
	for id, entry := range f.ledger {
		if !entry.Excommunicated || entry.ReliefTime.After(now) {
			continue
		}
		if err := f.unexcommunicate(ctx, entry); err != nil {
			errs = append(errs, err)
		}
		touched[id] = true
	}
	return errs
}

// warn notifies the offender without touching ledger counters.
func (f *Filter) warn(ctx context.Context, entry *Entry) error {
	if err := f.notifier.Notify(ctx, entry.User.ID, i18n.Get(f.cfg.WarnMessage, f.cfg.Language)); err != nil {
		return fmt.Errorf("warn user %d: %w", entry.User.ID, err)
	}
	observability.RecordEscalation("warn")
	f.logger.WithField("user_id", entry.User.ID).WithField("user", entry.User.FullName()).Debug("warned")
	return nil
}

// excommunicate commits the state transition first; the notification is
// best-effort and its failure propagates without rolling anything back.
func (f *Filter) excommunicate(ctx context.Context, entry *Entry, now time.Time) error {
	entry.Excommunicated = true
	entry.ExcomCount++
	duration := backoff(f.cfg.ExcomDuration, entry.ExcomCount)
	entry.ReliefTime = now.Add(duration)
	observability.RecordEscalation("excommunicate")
	f.logger.WithField("user_id", entry.User.ID).WithField("user", entry.User.FullName()).
		WithField("relief_time", entry.ReliefTime).Info("excommunicated")

	if f.store != nil {
		event := &db.ExcommunicationEvent{
			ID:         uuid.New(),
			UserID:     entry.User.ID,
			ExcomCount: entry.ExcomCount,
			ReliefTime: entry.ReliefTime,
			CreatedAt:  now,
		}
		if err := f.store.RecordExcommunication(ctx, event); err != nil {
			f.logger.WithError(err).Warn("cant record excommunication event")
		}
	}

	lang := f.cfg.Language
	text := fmt.Sprintf("%s\n\n%s <strong>%s</strong> %s <strong>%s</strong>.",
		i18n.Get(f.cfg.ExcomMessage, lang),
		i18n.Get("Your excommunication will last", lang), duration,
		i18n.Get("and will be lifted on", lang), entry.ReliefTime.UTC().Format(time.RFC1123))
	if err := f.notifier.Notify(ctx, entry.User.ID, text); err != nil {
		return fmt.Errorf("notify excommunication of user %d: %w", entry.User.ID, err)
	}
	return nil
}

// unexcommunicate lifts the excommunication and resets the offense count.
// ExcomCount survives so the next excommunication backs off further.
func (f *Filter) unexcommunicate(ctx context.Context, entry *Entry) error {
	entry.Excommunicated = false
	entry.OffenseCount = 0
	observability.RecordEscalation("lift")
	f.logger.WithField("user_id", entry.User.ID).WithField("user", entry.User.FullName()).Info("lifted excommunication")

	if err := f.notifier.Notify(ctx, entry.User.ID, i18n.Get(f.cfg.LiftedMessage, f.cfg.Language)); err != nil {
		return fmt.Errorf("notify lift of user %d: %w", entry.User.ID, err)
	}
	return nil
}

func (f *Filter) persist(ctx context.Context, touched map[int64]bool) {
	if f.store == nil || len(touched) == 0 {
		return
	}
	now := f.now()
	offenders := make([]*db.Offender, 0, len(touched))
	for id := range touched {
		entry, ok := f.ledger[id]
		if !ok {
			continue
		}
		offenders = append(offenders, &db.Offender{
			UserID:         entry.User.ID,
			FirstName:      entry.User.FirstName,
			LastName:       entry.User.LastName,
			UserName:       entry.User.UserName,
			OffenseCount:   entry.OffenseCount,
			Excommunicated: entry.Excommunicated,
			ExcomCount:     entry.ExcomCount,
			ReliefTime:     entry.ReliefTime,
			UpdatedAt:      now,
		})
	}
	if err := f.store.UpsertOffenders(ctx, offenders); err != nil {
		f.logger.WithError(err).Warn("cant persist offense ledger")
	}
}

// Entry returns a copy of the ledger entry for a user, if any.
func (f *Filter) Entry(userID int64) (Entry, bool) {
	entry, ok := f.ledger[userID]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// backoff computes base^n minutes by repeated multiplication; n is a small
// non-negative integer, so this avoids math.Pow drift.
func backoff(base float64, n int) time.Duration {
	m := 1.0
	for i := 0; i < n; i++ {
		m *= base
	}
	return time.Duration(m * float64(time.Minute))
}
