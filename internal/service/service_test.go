package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/dbtest"
	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/notify"
	"github.com/tokmz/uskup/pkg/cache"
	"github.com/tokmz/uskup/pkg/logger"
)

type capture struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *capture) Publish(_ context.Context, e notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capture) all() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Event(nil), c.events...)
}

type fixture struct {
	db        *gorm.DB
	cache     cache.Cache
	events    *capture
	dashboard *Dashboard
	records   *Records
	actor     *auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)

	c, err := cache.New(cache.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	user := &model.User{Email: "sekretaris@keuskupan.id", Name: "Agnes", Role: model.RoleStaff}
	require.NoError(t, db.Create(user).Error)

	events := &capture{}
	dash := NewDashboard(db, c)
	return &fixture{
		db:        db,
		cache:     c,
		events:    events,
		dashboard: dash,
		records:   NewRecords(db, NewChanges(events, dash, logger.Nop())),
		actor:     &auth.Principal{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	}
}

func (f *fixture) kind(t *testing.T, name string) Collection {
	t.Helper()
	c, err := f.records.Kind(name)
	require.NoError(t, err)
	return c
}
