package step

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	artifactmodels "onboard/internal/artifact/models"
	artifactstore "onboard/internal/artifact/store"
	employeemodels "onboard/internal/employee/models"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/mailer"
	"onboard/internal/runlog"
	runlogstore "onboard/internal/runlog/store"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

// The welcome mail pins orientation to this venue regardless of what the
// schedule step booked. See DESIGN.md on the inherited window mismatch.
const notifyLocation = "Sukhumvit Hills"

// NotifyConfig carries the deployment-level notification settings.
type NotifyConfig struct {
	TimeZone string
	From     string
}

// Notify composes and dispatches the welcome message with its calendar
// invite. It has no idempotency guard: a re-run sends again. A missing
// employee or a transport failure is recorded as an ERROR entry without
// failing the pipeline.
type Notify struct {
	base
	notifications artifactstore.NotificationStore
	transport     mailer.Transport
	cfg           NotifyConfig
}

func NewNotify(employees employeestore.Store, notifications artifactstore.NotificationStore, logs runlogstore.Store, transport mailer.Transport, cfg NotifyConfig, opts ...Option) (*Notify, error) {
	if employees == nil {
		return nil, errors.New("employee store is required")
	}
	if notifications == nil {
		return nil, errors.New("notification store is required")
	}
	if logs == nil {
		return nil, errors.New("run log store is required")
	}
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = defaultTimeZone
	}
	s := &Notify{
		base:          newBase("Notify", employees, logs),
		notifications: notifications,
		transport:     transport,
		cfg:           cfg,
	}
	for _, opt := range opts {
		opt(&s.base)
	}
	return s, nil
}

func (s *Notify) Execute(ctx context.Context, employeeID int64) (Result, error) {
	rec := runlog.NewRecorder()
	input := map[string]any{"employee_id": employeeID}

	emp, err := s.employees.Get(ctx, employeeID)
	if errors.Is(err, sentinel.ErrNotFound) {
		rec.Record("employee not found", map[string]any{"id": employeeID})
		return s.fail(ctx, employeeID, input, rec, "employee not found")
	}
	if err != nil {
		return Result{}, fmt.Errorf("load employee %d: %w", employeeID, err)
	}
	rec.Record("loaded employee", map[string]any{"id": emp.ID})

	// Fixed 09:00-10:00 window on the start date, computed here rather than
	// read from the orientation artifact.
	loc, err := time.LoadLocation(s.cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	y, m, d := emp.StartDate.Date()
	start := time.Date(y, m, d, 9, 0, 0, 0, loc)
	end := start.Add(time.Hour)

	subject, textBody, htmlBody := composeWelcome(emp, start, end, s.cfg.TimeZone)
	rec.Record("composed message", map[string]any{"subject": subject, "location": notifyLocation})

	calendar := mailer.BuildICS(mailer.CalendarEvent{
		UID:           uuid.NewString(),
		Summary:       fmt.Sprintf("Day-1 Orientation: %s", emp.Name),
		Start:         start,
		End:           end,
		TimeZone:      s.cfg.TimeZone,
		Location:      notifyLocation,
		Description:   defaultDescription,
		Organizer:     s.cfg.From,
		AttendeeEmail: emp.Email,
		Stamp:         requestcontext.Now(ctx),
	})
	rec.Record("calendar invite built", map[string]any{"tz": s.cfg.TimeZone})

	invite := mailer.Invite{
		To:       emp.Email,
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
		Calendar: calendar,
	}
	if err := s.transport.Send(ctx, invite); err != nil {
		rec.Record("notification send failed", map[string]any{"channel": s.transport.Channel()})
		s.logger.WarnContext(ctx, "notification send failed",
			"employee_id", employeeID,
			"channel", s.transport.Channel(),
			"error", err,
		)
		return s.fail(ctx, employeeID, input, rec, err.Error())
	}
	sent := artifactmodels.SentResult{Channel: s.transport.Channel(), OK: true}
	rec.Record("notification sent", sent)
	s.metrics.ObserveNotification(sent.Channel)

	notification := &artifactmodels.Notification{
		EmployeeID: employeeID,
		Channel:    sent.Channel,
		Message:    textBody,
		Sent:       sent,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		rec.Record("notification record failed", nil)
		return s.fail(ctx, employeeID, input, rec, fmt.Sprintf("record notification: %v", err))
	}

	output := map[string]any{
		// Derived from the employee id, not independently sequenced.
		"notification_id": employeeID*100 + 1,
		"message":         textBody,
		"sent":            sent,
	}
	logID, err := s.persist(ctx, employeeID, input, rec, output, runlog.StatusOK)
	if err != nil {
		return Result{}, err
	}
	return Result{LogID: logID, Output: output}, nil
}

// fail persists the ERROR entry and returns it as a handled outcome. Notify
// failures never abort the pipeline.
func (s *Notify) fail(ctx context.Context, employeeID int64, input map[string]any, rec *runlog.Recorder, msg string) (Result, error) {
	output := map[string]any{"error": msg}
	logID, err := s.persist(ctx, employeeID, input, rec, output, runlog.StatusError)
	if err != nil {
		return Result{}, err
	}
	return Result{LogID: logID, Output: output}, nil
}

func composeWelcome(emp *employeemodels.Employee, start, end time.Time, tz string) (subject, textBody, htmlBody string) {
	const stamp = "2006-01-02 15:04:05"
	startDate := emp.StartDate.Format("2006-01-02")
	startLocal := start.Format(stamp)
	endLocal := end.Format(stamp)

	subject = "Welcome Aboard - Day-1 Orientation Details"

	textBody = fmt.Sprintf(`Dear %s,

We are pleased to confirm your commencement as %s on %s.
Please find the details of your Day-1 orientation below:

- Date & Time: %s - %s (%s)
- Location: %s

A calendar invitation (.ics) is attached. Kindly accept the invite so it is added to your calendar.
Should you have any questions prior to your start date, please reply to this email.

Kind regards,
Human Resources
`, emp.Name, emp.Role, startDate, startLocal, endLocal, tz, notifyLocation)

	htmlBody = fmt.Sprintf(`<html>
  <body style="font-family:Arial,Helvetica,sans-serif;font-size:14px;color:#111;line-height:1.5">
    <p>Dear %s,</p>
    <p>We are pleased to confirm your commencement as <b>%s</b> on <b>%s</b>.</p>
    <p>Please find the details of your <b>Day-1 orientation</b> below:</p>
    <p>
      <b>Date &amp; Time</b>: %s - %s (%s)<br/>
      <b>Location</b>: %s
    </p>
    <p>A calendar invitation (.ics) is attached. Kindly accept the invite so it is added to your calendar.</p>
    <p>Should you have any questions prior to your start date, please reply to this email.</p>
    <p>Kind regards,<br/>Human Resources</p>
  </body>
</html>
`, emp.Name, emp.Role, startDate, startLocal, endLocal, tz, notifyLocation)

	return subject, textBody, htmlBody
}
