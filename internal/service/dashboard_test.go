package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/uskup/internal/model"
)

func TestDashboard_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.dashboard.now = func() time.Time { return now }
	today := now.Format(time.DateOnly)

	uid := f.actor.UserID
	seed := []any{
		&model.Agenda{Owned: model.Owned{CreatedBy: uid}, Judul: "Rapat hari ini", Tanggal: today},
		&model.Agenda{Owned: model.Owned{CreatedBy: uid}, Judul: "Rapat besok", Tanggal: now.AddDate(0, 0, 1).Format(time.DateOnly)},
		&model.Task{Owned: model.Owned{CreatedBy: uid}, Judul: "Terlambat", Status: model.TaskLate, Prioritas: "Rendah"},
		&model.Task{Owned: model.Owned{CreatedBy: uid}, Judul: "Penting", Status: model.TaskWaiting, Prioritas: model.PriorityHigh},
		&model.Task{Judul: "Biasa", Status: model.TaskWaiting, Prioritas: "Sedang"},
		&model.Task{Judul: "Selesai", Status: model.TaskDone, Prioritas: model.PriorityHigh},
		&model.Notulensi{Owned: model.Owned{CreatedBy: uid}, Judul: "Draft", Status: model.NotulensiDraft},
		&model.Notulensi{Judul: "Disetujui", Status: model.NotulensiApproved},
		&model.Imam{Nama: "RD. A", Status: model.ImamActive},
		&model.Imam{Nama: "RD. B", Status: "Pensiun"},
		&model.Decision{Judul: "Renovasi", Status: model.DecisionPlanning},
		&model.Decision{Judul: "Selesai", Status: model.DecisionDone},
	}
	for _, rec := range seed {
		require.NoError(t, f.db.Create(rec).Error)
	}

	got, err := f.dashboard.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, Summary{
		AgendaToday:     1,
		TasksActive:     3,
		NotulensiMonth:  2,
		ImamAktif:       1,
		DecisionsActive: 1,
	}, got.Summary)
	assert.Len(t, got.RecentAgenda, 2)
	assert.Equal(t, "Agnes", got.RecentAgenda[0].CreatorName)

	urgent := make(map[string]string)
	for _, task := range got.UrgentTasks {
		urgent[task.Judul] = task.CreatorName
	}
	assert.Equal(t, map[string]string{"Terlambat": "Agnes", "Penting": "Agnes", "Selesai": "Unknown"}, urgent)

	require.Len(t, got.PendingNotulensi, 1)
	assert.Equal(t, "Draft", got.PendingNotulensi[0].Judul)
	assert.True(t, now.Equal(got.LastUpdated))
}

func TestDashboard_CachedUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.dashboard.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, first.Summary.ImamAktif)
	assert.NotNil(t, first.RecentAgenda)

	// 直接写库不会使缓存失效
	require.NoError(t, f.db.Create(&model.Imam{Nama: "RD. A", Status: model.ImamActive}).Error)
	cached, err := f.dashboard.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, cached.Summary.ImamAktif)

	// 经由服务写入会清除缓存
	_, err = f.kind(t, KindImam).Create(ctx, f.actor, map[string]any{
		"nama": "RD. B", "paroki": "Katedral", "jabatan": "Pastor Rekan", "tanggalTahbisan": "2010-07-01",
	})
	require.NoError(t, err)

	fresh, err := f.dashboard.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fresh.Summary.ImamAktif)
}
