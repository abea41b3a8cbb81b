package googlecalendar

import (
	"context"

	"google.golang.org/api/calendar/v3"
)

// serviceAPI calendarAPI поверх сгенерированного клиента Google
type serviceAPI struct {
	svc *calendar.Service
}

func (a *serviceAPI) CalendarIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	err := a.svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			if item.Deleted || item.Hidden {
				continue
			}
			ids = append(ids, item.Id)
		}
		return nil
	})
	return ids, err
}

func (a *serviceAPI) FreeBusy(ctx context.Context, req *calendar.FreeBusyRequest) (*calendar.FreeBusyResponse, error) {
	return a.svc.Freebusy.Query(req).Context(ctx).Do()
}

func (a *serviceAPI) Events(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error) {
	events := make([]*calendar.Event, 0)
	err := a.svc.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			events = append(events, page.Items...)
			return nil
		})
	return events, err
}
