package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily_quote_mailer/internal/domain/delivery"
	"daily_quote_mailer/internal/domain/email"
	"daily_quote_mailer/internal/domain/quote"
	"daily_quote_mailer/internal/domain/user"
	"daily_quote_mailer/internal/infra/config"
	idb "daily_quote_mailer/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Run-level aborts. Both are reported, never retried.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMailSession        = errors.New("mail session failed")
)

const (
	SenderDisplayName = "MindFuel"
	DailySubject      = "Your Daily Dose of Inspiration"
	closingLine       = "Go conquer the world!"
)

// Outcome summarizes how a run ended.
type Outcome string

const (
	OutcomeCompleted          Outcome = "completed"
	OutcomeNothingToSend      Outcome = "nothing_to_send"
	OutcomeStorageUnavailable Outcome = "storage_unavailable"
	OutcomeMailSessionFailed  Outcome = "mail_session_failed"
)

// Storage is the persistent store as seen by one run.
type Storage interface {
	Users() user.Repository
	Quotes() quote.Repository
	Deliveries() delivery.Repository
	Close() error
}

// StorageOpener opens the store for one run. The run closes what it opens.
type StorageOpener func(ctx context.Context) (Storage, error)

// RunReport describes one dispatcher run.
type RunReport struct {
	RunID     string
	Date      string
	Outcome   Outcome
	Eligible  int
	Attempted int
	Succeeded int
	Failed    int
	LogErrors int // attempts whose log row could not be written
	Err       error
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// Dispatcher sends today's quote to every eligible user, one attempt each.
// Runs must not overlap; the caller's scheduler guarantees it.
type Dispatcher struct {
	openStorage StorageOpener
	dialer      email.Dialer
	smtpCfg     config.SMTPConfig
	logger      logrus.FieldLogger
	now         func() time.Time
}

func NewDispatcher(
	openStorage StorageOpener,
	dialer email.Dialer,
	smtpCfg config.SMTPConfig,
	logger logrus.FieldLogger,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		openStorage: openStorage,
		dialer:      dialer,
		smtpCfg:     smtpCfg,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one full pipeline: configuration check, storage, quote and
// user lookup, one mail session, one send and one log row per eligible user.
// The returned error is the run-level abort, also kept in RunReport.Err.
// Per-recipient failures are recorded in the store and counted, never returned.
func (d *Dispatcher) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID: uuid.NewString(),
		Date:  quote.DateOf(d.now()),
	}
	log := d.logger.WithFields(logrus.Fields{"run_id": report.RunID, "date": report.Date})

	// Registered first so it runs after every other deferred release.
	defer log.Info("Email sending process complete")

	// 1. Configuration
	if err := d.smtpCfg.Validate(); err != nil {
		log.WithError(err).Error("Missing email configuration")
	} else {
		log.Info("Email configuration loaded successfully")
	}

	// 2. Storage
	store, err := d.openStorage(ctx)
	if err != nil {
		log.WithError(err).Error("Database connection failed")
		return report.abort(OutcomeStorageUnavailable, fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}
	log.Info("Connected to database")
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Failed to close database connection")
			return
		}
		log.Info("Database connection closed")
	}()

	// 3. Today's quote
	todaysQuote, err := store.Quotes().GetByDate(ctx, report.Date)
	if err != nil {
		if !errors.Is(err, idb.ErrQuoteNotFound) {
			log.WithError(err).Error("Failed to look up today's quote")
			return report.abort(OutcomeStorageUnavailable, fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
		}
		log.Warn("No quote found for today")
		todaysQuote = nil
	} else {
		log.Info("Found today's quote")
	}

	// 4. Eligible users
	users, err := store.Users().ListEligible(ctx, report.Date)
	if err != nil {
		log.WithError(err).Error("Failed to list eligible users")
		return report.abort(OutcomeStorageUnavailable, fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}
	report.Eligible = len(users)
	if len(users) > 0 {
		log.Infof("%d active users to email", len(users))
	} else {
		log.Info("No users to email today (all already sent)")
	}

	// 5. Send gate
	if !todaysQuote.Deliverable() || len(users) == 0 {
		log.Warn("No quote or users to send emails to today")
		report.Outcome = OutcomeNothingToSend
		return report, nil
	}

	// 6. One mail session for the whole batch
	session, err := d.dialer.Dial(ctx)
	if err != nil {
		log.WithError(err).Error("SMTP connection error")
		return report.abort(OutcomeMailSessionFailed, fmt.Errorf("%w: %w", ErrMailSession, err))
	}
	log.Info("Logged into SMTP server successfully.")
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("Failed to close SMTP session")
		}
	}()

	// 7. One attempt per recipient
	deliveries := store.Deliveries()
	for _, u := range users {
		d.deliver(ctx, log, session, deliveries, u, todaysQuote, report)
	}

	log.WithFields(logrus.Fields{
		"attempted": report.Attempted,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("Batch finished")
	report.Outcome = OutcomeCompleted
	return report, nil
}

// deliver makes one send attempt and writes exactly one log row for it.
func (d *Dispatcher) deliver(
	ctx context.Context,
	log logrus.FieldLogger,
	session email.Session,
	deliveries delivery.Repository,
	u *user.User,
	q *quote.Quote,
	report *RunReport,
) {
	ulog := log.WithField("email", u.Email)
	report.Attempted++

	entry := &delivery.LogEntry{
		Email:    u.Email,
		Quote:    q.Text,
		Author:   q.Author,
		SentDate: report.Date, // the run's date, even if the loop crosses midnight
	}

	if err := session.Send(ctx, composeMessage(d.smtpCfg.Address, u, q)); err != nil {
		ulog.WithError(err).Errorf("Failed to send email to %s", u.Email)
		entry.Status = delivery.StatusFailed
		report.Failed++
	} else {
		ulog.Infof("Email sent successfully to %s", u.Email)
		entry.Status = delivery.StatusSuccess
		report.Succeeded++
	}
	entry.SentAt = d.now()

	// The attempt already happened, so its row is written even if ctx was cancelled.
	if err := deliveries.Append(context.WithoutCancel(ctx), entry); err != nil {
		ulog.WithError(err).Errorf("Failed to record delivery for %s", u.Email)
		report.LogErrors++
	}
}

func composeMessage(fromAddress string, u *user.User, q *quote.Quote) *email.Message {
	return &email.Message{
		FromName:    SenderDisplayName,
		FromAddress: fromAddress,
		To:          u.Email,
		Subject:     DailySubject,
		Body:        fmt.Sprintf("Dear %s,\n\n\"%s\"\n-- %s\n\n%s", u.Name, q.Text, q.Author, closingLine),
	}
}

func (r *RunReport) abort(outcome Outcome, err error) (*RunReport, error) {
	r.Outcome = outcome
	r.Err = err
	return r, err
}
