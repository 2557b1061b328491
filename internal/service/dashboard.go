package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/repository"
	"github.com/tokmz/uskup/pkg/cache"
)

const (
	// DashboardKey 仪表盘缓存键
	DashboardKey = "dashboard"
	// DashboardTTL 仪表盘缓存时间
	DashboardTTL = 5 * time.Minute
)

// Summary 汇总数字
type Summary struct {
	AgendaToday     int64 `json:"agendaToday"`
	TasksActive     int64 `json:"tasksActive"`
	NotulensiMonth  int64 `json:"notulensiMonth"`
	ImamAktif       int64 `json:"imamAktif"`
	DecisionsActive int64 `json:"decisionsActive"`
}

// AgendaItem 带创建人姓名的日程
type AgendaItem struct {
	model.Agenda
	CreatorName string `json:"creatorName"`
}

// TaskItem 带创建人姓名的任务
type TaskItem struct {
	model.Task
	CreatorName string `json:"creatorName"`
}

// NotulensiItem 带创建人姓名的纪要
type NotulensiItem struct {
	model.Notulensi
	CreatorName string `json:"creatorName"`
}

// DashboardData 仪表盘
type DashboardData struct {
	Summary          Summary         `json:"summary"`
	RecentAgenda     []AgendaItem    `json:"recentAgenda"`
	UrgentTasks      []TaskItem      `json:"urgentTasks"`
	PendingNotulensi []NotulensiItem `json:"pendingNotulensi"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

// Dashboard 仪表盘汇总
type Dashboard struct {
	loader    *cache.Loader
	ttl       time.Duration
	now       func() time.Time
	agenda    *repository.Repository[model.Agenda]
	tasks     *repository.Repository[model.Task]
	notulensi *repository.Repository[model.Notulensi]
	decisions *repository.Repository[model.Decision]
	imam      *repository.Repository[model.Imam]
}

// NewDashboard 创建仪表盘服务
func NewDashboard(db *gorm.DB, c cache.Cache) *Dashboard {
	withCreator := repository.Spec{Creator: true}
	return &Dashboard{
		loader:    cache.NewLoader(c),
		ttl:       DashboardTTL,
		now:       time.Now,
		agenda:    repository.New[model.Agenda](db, withCreator),
		tasks:     repository.New[model.Task](db, withCreator),
		notulensi: repository.New[model.Notulensi](db, withCreator),
		decisions: repository.New[model.Decision](db, repository.Spec{}),
		imam:      repository.New[model.Imam](db, repository.Spec{}),
	}
}

// Get 读取仪表盘，缓存未命中时并发查询各项数据
func (d *Dashboard) Get(ctx context.Context) (*DashboardData, error) {
	return cache.RememberWithLock(ctx, d.loader, DashboardKey, d.ttl, d.load)
}

// Invalidate 清除缓存
func (d *Dashboard) Invalidate(ctx context.Context) error {
	return d.loader.Forget(ctx, DashboardKey)
}

func (d *Dashboard) load(ctx context.Context) (*DashboardData, error) {
	now := d.now()
	today := now.Format(time.DateOnly)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		data      = &DashboardData{LastUpdated: now}
		agenda    []model.Agenda
		tasks     []model.Task
		notulensi []model.Notulensi
	)

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func() (int64, error)) {
		g.Go(func() error {
			n, err := fn()
			*dst = n
			return err
		})
	}

	count(&data.Summary.AgendaToday, func() (int64, error) {
		return d.agenda.Count(ctx, where("tanggal = ?", today))
	})
	count(&data.Summary.TasksActive, func() (int64, error) {
		return d.tasks.Count(ctx, where("status <> ?", model.TaskDone))
	})
	count(&data.Summary.NotulensiMonth, func() (int64, error) {
		return d.notulensi.Count(ctx, where("created_at >= ?", monthStart))
	})
	count(&data.Summary.ImamAktif, func() (int64, error) {
		return d.imam.Count(ctx, where("status = ?", model.ImamActive))
	})
	count(&data.Summary.DecisionsActive, func() (int64, error) {
		return d.decisions.Count(ctx, where("status <> ?", model.DecisionDone))
	})

	g.Go(func() (err error) {
		agenda, err = d.agenda.Find(ctx, "created_at desc", 5)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = d.tasks.Find(ctx, "created_at desc", 10,
			where("status = ? OR prioritas = ?", model.TaskLate, model.PriorityHigh))
		return err
	})
	g.Go(func() (err error) {
		notulensi, err = d.notulensi.Find(ctx, "created_at desc", 5,
			where("status <> ?", model.NotulensiApproved))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.RecentAgenda = make([]AgendaItem, len(agenda))
	for i, a := range agenda {
		data.RecentAgenda[i] = AgendaItem{Agenda: a, CreatorName: a.CreatorName()}
	}
	data.UrgentTasks = make([]TaskItem, len(tasks))
	for i, t := range tasks {
		data.UrgentTasks[i] = TaskItem{Task: t, CreatorName: t.CreatorName()}
	}
	data.PendingNotulensi = make([]NotulensiItem, len(notulensi))
	for i, n := range notulensi {
		data.PendingNotulensi[i] = NotulensiItem{Notulensi: n, CreatorName: n.CreatorName()}
	}
	return data, nil
}

func where(query string, args ...any) repository.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}
