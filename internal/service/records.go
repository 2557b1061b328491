// Package service 业务逻辑
package service

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/notify"
	"github.com/tokmz/uskup/internal/repository"
	"github.com/tokmz/uskup/pkg/errors"
	"github.com/tokmz/uskup/pkg/logger"
)

// 记录类型
const (
	KindAgenda    = "agenda"
	KindTasks     = "tasks"
	KindNotulensi = "notulensi"
	KindSurat     = "surat"
	KindDecisions = "decisions"
	KindImam      = "imam"
)

// Collection 一类记录的增删改查
type Collection interface {
	Name() string
	List(ctx context.Context, query url.Values) (any, int, error)
	Get(ctx context.Context, id string) (any, error)
	Create(ctx context.Context, actor *auth.Principal, body map[string]any) (any, error)
	Update(ctx context.Context, actor *auth.Principal, id string, body map[string]any) (any, error)
	Delete(ctx context.Context, actor *auth.Principal, id string) error
}

// Field 可写字段
type Field struct {
	Name     string // JSON 名
	Column   string
	Required bool
}

// Changes 写操作之后的推送与缓存失效
type Changes struct {
	publisher notify.Publisher
	dashboard *Dashboard
	log       logger.Logger
}

// NewChanges publisher 为 nil 时不推送
func NewChanges(publisher notify.Publisher, dashboard *Dashboard, log logger.Logger) *Changes {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Changes{publisher: publisher, dashboard: dashboard, log: log}
}

// record 失败只记录日志，不影响写操作结果
func (c *Changes) record(ctx context.Context, publish bool, e notify.Event) {
	if c.dashboard != nil {
		if err := c.dashboard.Invalidate(ctx); err != nil {
			c.log.WarnContext(ctx, "dashboard cache invalidation failed", zap.Error(err))
		}
	}
	if !publish {
		return
	}
	if err := c.publisher.Publish(ctx, e); err != nil {
		c.log.WarnContext(ctx, "publish data change failed",
			zap.String("type", e.Type),
			zap.String("action", e.Action),
			zap.String("record_id", e.RecordID),
			zap.Error(err),
		)
	}
}

// identified 记录必须有 GetID
type identified[T any] interface {
	*T
	GetID() string
}

type collection[T any, PT identified[T]] struct {
	name     string
	label    string
	repo     *repository.Repository[T]
	fields   []Field
	equals   []string
	contains []string
	// publish 写操作后推送 data:changed
	publish  bool
	defaults func(rec PT)
	// patch 可调整更新内容并追加列
	patch   func(rec PT, columns []string, now time.Time) []string
	changes *Changes
	now     func() time.Time
}

func (c *collection[T, PT]) Name() string { return c.name }

func (c *collection[T, PT]) List(ctx context.Context, query url.Values) (any, int, error) {
	f := repository.Filter{
		Equals:   make(map[string]string, len(c.equals)),
		Contains: make(map[string]string, len(c.contains)),
		Search:   query.Get("search"),
	}
	for _, col := range c.equals {
		f.Equals[col] = query.Get(col)
	}
	for _, col := range c.contains {
		f.Contains[col] = query.Get(col)
	}

	list, err := c.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return list, len(list), nil
}

func (c *collection[T, PT]) Get(ctx context.Context, id string) (any, error) {
	return c.get(ctx, id)
}

func (c *collection[T, PT]) get(ctx context.Context, id string) (*T, error) {
	rec, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, c.notFound(err)
	}
	return rec, nil
}

func (c *collection[T, PT]) Create(ctx context.Context, actor *auth.Principal, body map[string]any) (any, error) {
	input := c.accept(body)
	if missing := c.missing(input); len(missing) > 0 {
		return nil, ErrMissingFields.WithMessagef("Missing required fields: %s", strings.Join(missing, ", "))
	}

	var rec T
	if err := decode(input, &rec); err != nil {
		return nil, err
	}
	if c.defaults != nil {
		c.defaults(&rec)
	}
	if owned, ok := any(PT(&rec)).(interface{ SetCreatedBy(string) }); ok && actor != nil {
		owned.SetCreatedBy(actor.UserID)
	}

	if err := c.repo.Create(ctx, &rec); err != nil {
		return nil, err
	}
	created, err := c.get(ctx, PT(&rec).GetID())
	if err != nil {
		return nil, err
	}

	c.changed(ctx, actor, notify.ActionCreate, PT(created).GetID(), created)
	return created, nil
}

func (c *collection[T, PT]) Update(ctx context.Context, actor *auth.Principal, id string, body map[string]any) (any, error) {
	input := c.accept(body)

	var rec T
	if err := decode(input, &rec); err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(input))
	for _, f := range c.fields {
		if _, ok := input[f.Name]; ok {
			columns = append(columns, f.Column)
		}
	}
	if c.patch != nil {
		columns = c.patch(&rec, columns, c.now())
	}

	updated, err := c.repo.Patch(ctx, id, &rec, columns...)
	if err != nil {
		return nil, c.notFound(err)
	}

	c.changed(ctx, actor, notify.ActionUpdate, id, updated)
	return updated, nil
}

func (c *collection[T, PT]) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return c.notFound(err)
	}
	c.changed(ctx, actor, notify.ActionDelete, id, map[string]string{"id": id})
	return nil
}

func (c *collection[T, PT]) changed(ctx context.Context, actor *auth.Principal, action, id string, data any) {
	if c.changes == nil {
		return
	}
	e := notify.Event{Type: c.name, Action: action, RecordID: id, Data: data}
	if actor != nil {
		e.SenderID = actor.UserID
	}
	c.changes.record(ctx, c.publish, e)
}

// accept 只保留可写字段
func (c *collection[T, PT]) accept(body map[string]any) map[string]any {
	input := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		if v, ok := body[f.Name]; ok {
			input[f.Name] = v
		}
	}
	return input
}

func (c *collection[T, PT]) missing(input map[string]any) []string {
	var names []string
	for _, f := range c.fields {
		if f.Required && blank(input[f.Name]) {
			names = append(names, f.Name)
		}
	}
	return names
}

func (c *collection[T, PT]) notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrNotFound.WithMessage(c.label + " not found")
	}
	return err
}

func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// decode 经 JSON 把输入写入记录，同时完成类型校验
func decode(input map[string]any, dst any) error {
	b, err := json.Marshal(input)
	if err != nil {
		return ErrInvalidField.WithError(err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return ErrInvalidField.WithMessagef("Invalid value for field %s", te.Field)
		}
		return ErrInvalidField.WithError(err)
	}
	return nil
}

// Records 全部记录类型
type Records struct {
	kinds map[string]Collection
	order []string
}

// NewRecords 注册六类记录
func NewRecords(db *gorm.DB, changes *Changes) *Records {
	r := &Records{kinds: make(map[string]Collection)}
	r.add(agendaCollection(db, changes))
	r.add(taskCollection(db, changes))
	r.add(notulensiCollection(db, changes))
	r.add(suratCollection(db, changes))
	r.add(decisionCollection(db, changes))
	r.add(imamCollection(db, changes))
	return r
}

func (r *Records) add(c Collection) {
	r.kinds[c.Name()] = c
	r.order = append(r.order, c.Name())
}

// Kind 按名称获取
func (r *Records) Kind(name string) (Collection, error) {
	c, ok := r.kinds[name]
	if !ok {
		return nil, ErrUnknownKind.WithMessagef("Unknown record type: %s", name)
	}
	return c, nil
}

// Names 已注册的类型名，按注册顺序
func (r *Records) Names() []string {
	return append([]string(nil), r.order...)
}

func agendaCollection(db *gorm.DB, changes *Changes) Collection {
	return &collection[model.Agenda, *model.Agenda]{
		name:  KindAgenda,
		label: "Agenda",
		repo: repository.New[model.Agenda](db, repository.Spec{
			Order:   "tanggal desc",
			Search:  []string{"judul", "lokasi", "deskripsi"},
			Creator: true,
		}),
		fields: []Field{
			{Name: "judul", Column: "judul", Required: true},
			{Name: "tanggal", Column: "tanggal", Required: true},
			{Name: "waktu", Column: "waktu", Required: true},
			{Name: "lokasi", Column: "lokasi", Required: true},
			{Name: "jenis", Column: "jenis", Required: true},
			{Name: "peserta", Column: "peserta", Required: true},
			{Name: "deskripsi", Column: "deskripsi"},
			{Name: "status", Column: "status"},
		},
		equals:  []string{"jenis", "status"},
		publish: true,
		defaults: func(a *model.Agenda) {
			if a.Status == "" {
				a.Status = model.AgendaScheduled
			}
		},
		changes: changes,
		now:     time.Now,
	}
}

func taskCollection(db *gorm.DB, changes *Changes) Collection {
	return &collection[model.Task, *model.Task]{
		name:  KindTasks,
		label: "Task",
		repo: repository.New[model.Task](db, repository.Spec{
			Order:   "created_at desc",
			Search:  []string{"judul", "deskripsi"},
			Creator: true,
		}),
		fields: []Field{
			{Name: "judul", Column: "judul", Required: true},
			{Name: "deskripsi", Column: "deskripsi", Required: true},
			{Name: "prioritas", Column: "prioritas", Required: true},
			{Name: "deadline", Column: "deadline", Required: true},
			{Name: "kategori", Column: "kategori", Required: true},
			{Name: "penanggungJawab", Column: "penanggung_jawab", Required: true},
			{Name: "status", Column: "status"},
			{Name: "progress", Column: "progress"},
		},
		equals:  []string{"prioritas", "status", "kategori"},
		publish: true,
		defaults: func(t *model.Task) {
			if t.Status == "" {
				t.Status = model.TaskWaiting
			}
		},
		patch:   taskProgress,
		changes: changes,
		now:     time.Now,
	}
}

// taskProgress 更新进度时同步状态与完成时间
func taskProgress(t *model.Task, columns []string, now time.Time) []string {
	if !slices.Contains(columns, "progress") {
		return columns
	}
	switch {
	case t.Progress >= 100:
		t.Status = model.TaskDone
		t.CompletedAt = &now
	case t.Progress > 0:
		t.Status = model.TaskInProgress
	default:
		t.Status = model.TaskWaiting
	}
	for _, col := range []string{"status", "completed_at"} {
		if !slices.Contains(columns, col) {
			columns = append(columns, col)
		}
	}
	return columns
}

func notulensiCollection(db *gorm.DB, changes *Changes) Collection {
	return &collection[model.Notulensi, *model.Notulensi]{
		name:  KindNotulensi,
		label: "Notulensi",
		repo: repository.New[model.Notulensi](db, repository.Spec{
			Order:   "tanggal desc",
			Search:  []string{"judul", "isi", "kesimpulan"},
			Creator: true,
		}),
		fields: []Field{
			{Name: "judul", Column: "judul", Required: true},
			{Name: "tanggal", Column: "tanggal", Required: true},
			{Name: "jenis", Column: "jenis", Required: true},
			{Name: "peserta", Column: "peserta", Required: true},
			{Name: "status", Column: "status"},
			{Name: "isi", Column: "isi"},
			{Name: "kesimpulan", Column: "kesimpulan"},
		},
		equals:  []string{"jenis", "status"},
		publish: true,
		defaults: func(n *model.Notulensi) {
			if n.Status == "" {
				n.Status = model.NotulensiDraft
			}
		},
		changes: changes,
		now:     time.Now,
	}
}

func suratCollection(db *gorm.DB, changes *Changes) Collection {
	return &collection[model.Surat, *model.Surat]{
		name:  KindSurat,
		label: "Surat",
		repo: repository.New[model.Surat](db, repository.Spec{
			Order:   "tanggal desc",
			Search:  []string{"judul", "pengirim", "penerima"},
			Creator: true,
		}),
		fields: []Field{
			{Name: "nomor", Column: "nomor", Required: true},
			{Name: "jenis", Column: "jenis", Required: true},
			{Name: "judul", Column: "judul", Required: true},
			{Name: "pengirim", Column: "pengirim", Required: true},
			{Name: "penerima", Column: "penerima", Required: true},
			{Name: "tanggal", Column: "tanggal", Required: true},
			{Name: "isi", Column: "isi"},
			{Name: "prioritas", Column: "prioritas"},
			{Name: "status", Column: "status"},
		},
		equals:  []string{"jenis", "status", "prioritas"},
		publish: true,
		defaults: func(s *model.Surat) {
			if s.Status == "" {
				s.Status = model.SuratWaiting
			}
		},
		changes: changes,
		now:     time.Now,
	}
}

func decisionCollection(db *gorm.DB, changes *Changes) Collection {
	return &collection[model.Decision, *model.Decision]{
		name:  KindDecisions,
		label: "Decision",
		repo: repository.New[model.Decision](db, repository.Spec{
			Order:   "target_date asc",
			Search:  []string{"judul", "deskripsi"},
			Creator: true,
		}),
		fields: []Field{
			{Name: "judul", Column: "judul", Required: true},
			{Name: "deskripsi", Column: "deskripsi", Required: true},
			{Name: "targetDate", Column: "target_date", Required: true},
			{Name: "kategori", Column: "kategori", Required: true},
			{Name: "penanggungJawab", Column: "penanggung_jawab", Required: true},
			{Name: "status", Column: "status"},
			{Name: "progress", Column: "progress"},
		},
		equals:  []string{"status", "kategori"},
		publish: true,
		defaults: func(d *model.Decision) {
			if d.Status == "" {
				d.Status = model.DecisionPlanning
			}
		},
		changes: changes,
		now:     time.Now,
	}
}

// imamCollection 名册变更只刷新仪表盘缓存
func imamCollection(db *gorm.DB, changes *Changes) Collection {
	return &collection[model.Imam, *model.Imam]{
		name:  KindImam,
		label: "Imam",
		repo: repository.New[model.Imam](db, repository.Spec{
			Order:  "nama asc",
			Search: []string{"nama", "paroki", "jabatan"},
		}),
		fields: []Field{
			{Name: "nama", Column: "nama", Required: true},
			{Name: "paroki", Column: "paroki", Required: true},
			{Name: "jabatan", Column: "jabatan", Required: true},
			{Name: "tanggalTahbisan", Column: "tanggal_tahbisan", Required: true},
			{Name: "status", Column: "status"},
			{Name: "nomorTelepon", Column: "nomor_telepon"},
			{Name: "email", Column: "email"},
			{Name: "alamat", Column: "alamat"},
		},
		equals:   []string{"status"},
		contains: []string{"paroki"},
		defaults: func(i *model.Imam) {
			if i.Status == "" {
				i.Status = model.ImamActive
			}
		},
		changes: changes,
		now:     time.Now,
	}
}
