package googlecalendar

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/m04kA/SMC-FieldService/internal/domain"
)

// NewOAuthConfig конфигурация OAuth2 с доступом на чтение календарей
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}
}

// Connection результат успешной авторизации календаря
type Connection struct {
	Tokens     []byte
	Email      string
	CalendarID string
}

// AuthCodeURL ссылка на страницу согласия Google для переданного state
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange обменивает код авторизации на токены и определяет email основного календаря
func (c *Client) Exchange(ctx context.Context, code string) (*Connection, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode tokens: %v", ErrInternal, err)
	}

	conn := &Connection{Tokens: raw, CalendarID: domain.PrimaryCalendarID}

	// Email не обязателен, без него подключение всё равно валидно
	email, err := c.primaryEmail(ctx, token)
	if err != nil {
		c.log.Warn("GoogleCalendar: failed to resolve primary calendar email: %v", err)
		return conn, nil
	}
	conn.Email = email
	return conn, nil
}

func (c *Client) primaryEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(c.oauth.Client(ctx, token)))
	if err != nil {
		return "", err
	}
	entry, err := svc.CalendarList.Get(domain.PrimaryCalendarID).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return entry.Id, nil
}
