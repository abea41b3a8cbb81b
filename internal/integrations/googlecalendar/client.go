package googlecalendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// Client клиент Google Calendar для получения занятых интервалов тенанта
type Client struct {
	oauth   *oauth2.Config
	tokens  TokenRepository
	timeout time.Duration
	loc     *time.Location
	log     Logger

	// newAPI подменяется в тестах
	newAPI func(ctx context.Context, token *oauth2.Token) (calendarAPI, error)
}

// NewClient создает новый экземпляр клиента Google Calendar
func NewClient(oauthCfg *oauth2.Config, tokens TokenRepository, timeout time.Duration, loc *time.Location, log Logger) *Client {
	c := &Client{
		oauth:   oauthCfg,
		tokens:  tokens,
		timeout: timeout,
		loc:     loc,
		log:     log,
	}
	c.newAPI = c.serviceForToken
	return c
}

func (c *Client) serviceForToken(ctx context.Context, token *oauth2.Token) (calendarAPI, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(c.oauth.Client(ctx, token)))
	if err != nil {
		return nil, err
	}
	return &serviceAPI{svc: svc}, nil
}

// ListBusyIntervals возвращает занятые интервалы календаря в [start, end).
// calendarID "primary" означает все календари аккаунта.
func (c *Client) ListBusyIntervals(ctx context.Context, tenantID uuid.UUID, start, end time.Time, calendarID string) ([]domain.BusyInterval, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// 1. Загружаем токены тенанта
	raw, err := c.tokens.GetCalendarTokens(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant=%s: %v", ErrNotConnected, tenantID, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("%w: failed to decode tokens: %v", ErrInternal, err)
	}

	api, err := c.newAPI(ctx, &token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create calendar service: %v", ErrInternal, err)
	}

	// 2. Определяем список календарей
	ids := []string{calendarID}
	if calendarID == "" || calendarID == domain.PrimaryCalendarID {
		ids, err = api.CalendarIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list calendars: %v", ErrInvalidResponse, err)
		}
		if len(ids) == 0 {
			ids = []string{domain.PrimaryCalendarID}
		}
	}

	timeMin := start.Format(time.RFC3339)
	timeMax := end.Format(time.RFC3339)

	// 3. Запрашиваем freebusy по всем календарям одним вызовом
	items := make([]*calendar.FreeBusyRequestItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, &calendar.FreeBusyRequestItem{Id: id})
	}
	fb, err := api.FreeBusy(ctx, &calendar.FreeBusyRequest{
		TimeMin: timeMin,
		TimeMax: timeMax,
		Items:   items,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: freebusy query failed: %v", ErrInvalidResponse, err)
	}

	intervals := make([]domain.BusyInterval, 0)
	for _, id := range ids {
		cal, ok := fb.Calendars[id]
		if !ok {
			continue
		}
		if len(cal.Errors) > 0 {
			c.log.Warn("GoogleCalendar: freebusy errors for calendar=%s: %s", id, cal.Errors[0].Reason)
		}
		intervals = append(intervals, convertPeriods(cal.Busy, id)...)
	}

	// 4. События нужны для целодневных записей, которые freebusy отдаёт как обычные периоды
	for _, id := range ids {
		events, err := api.Events(ctx, id, timeMin, timeMax)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("%w: events list interrupted: %v", ErrInvalidResponse, err)
			}
			c.log.Warn("GoogleCalendar: failed to list events for calendar=%s: %v", id, err)
			continue
		}
		intervals = append(intervals, convertEvents(events, id, c.loc)...)
	}

	merged := mergeIntervals(intervals)
	c.log.Info("GoogleCalendar: tenant=%s calendars=%d busy_intervals=%d", tenantID, len(ids), len(merged))
	return merged, nil
}

// convertPeriods переводит freebusy периоды в занятые интервалы, пропуская некорректные
func convertPeriods(periods []*calendar.TimePeriod, source string) []domain.BusyInterval {
	out := make([]domain.BusyInterval, 0, len(periods))
	for _, p := range periods {
		if p == nil {
			continue
		}
		start, err1 := time.Parse(time.RFC3339, p.Start)
		end, err2 := time.Parse(time.RFC3339, p.End)
		if err1 != nil || err2 != nil || !end.After(start) {
			continue
		}
		out = append(out, domain.BusyInterval{Start: start, End: end, Source: source})
	}
	return out
}

// convertEvents переводит события календаря в занятые интервалы.
// Отменённые и прозрачные (не занимающие время) события пропускаются.
// Целодневные события отсчитываются от полуночи в loc.
func convertEvents(events []*calendar.Event, source string, loc *time.Location) []domain.BusyInterval {
	out := make([]domain.BusyInterval, 0, len(events))
	for _, e := range events {
		if e == nil || e.Start == nil || e.End == nil {
			continue
		}
		if e.Status == "cancelled" || e.Transparency == "transparent" {
			continue
		}

		if e.Start.Date != "" {
			start, err := time.ParseInLocation(domain.DateFormat, e.Start.Date, loc)
			if err != nil {
				continue
			}
			end, err := time.ParseInLocation(domain.DateFormat, e.End.Date, loc)
			if err != nil || !end.After(start) {
				end = start.AddDate(0, 0, 1)
			}
			out = append(out, domain.BusyInterval{Start: start, End: end, AllDay: true, Source: source})
			continue
		}

		start, err1 := time.Parse(time.RFC3339, e.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, e.End.DateTime)
		if err1 != nil || err2 != nil || !end.After(start) {
			continue
		}
		out = append(out, domain.BusyInterval{Start: start, End: end, Source: source})
	}
	return out
}

type intervalKey struct {
	start  int64
	end    int64
	allDay bool
}

// mergeIntervals убирает дубликаты (один и тот же интервал из freebusy и events) и сортирует по началу
func mergeIntervals(intervals []domain.BusyInterval) []domain.BusyInterval {
	seen := make(map[intervalKey]struct{}, len(intervals))
	out := make([]domain.BusyInterval, 0, len(intervals))
	for _, iv := range intervals {
		key := intervalKey{start: iv.Start.UnixNano(), end: iv.End.UnixNano(), allDay: iv.AllDay}
		if _, dup := seen[key]; dup {
			continue
		}
		// timed-копия целодневного события не нужна, если уже есть целодневная версия
		if !iv.AllDay {
			if _, dup := seen[intervalKey{start: key.start, end: key.end, allDay: true}]; dup {
				continue
			}
		}
		seen[key] = struct{}{}
		out = append(out, iv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].End.Before(out[j].End)
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
