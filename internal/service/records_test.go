package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/notify"
	"github.com/tokmz/uskup/internal/repository"
	"github.com/tokmz/uskup/pkg/errors"
)

func agendaBody(judul, tanggal string) map[string]any {
	return map[string]any{
		"judul":   judul,
		"tanggal": tanggal,
		"waktu":   "09:00",
		"lokasi":  "Wisma Uskup",
		"jenis":   "Rapat",
		"peserta": "Dewan Konsultores",
	}
}

func TestRecords_Kinds(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{KindAgenda, KindTasks, KindNotulensi, KindSurat, KindDecisions, KindImam}, f.records.Names())

	_, err := f.records.Kind("users")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRecords_CreateAgenda(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agenda := f.kind(t, KindAgenda)

	body := agendaBody("Rapat Kuria", "2026-10-20")
	body["id"] = "forced-id"
	body["createdBy"] = "someone-else"

	got, err := agenda.Create(ctx, f.actor, body)
	require.NoError(t, err)
	a := got.(*model.Agenda)
	assert.NotEqual(t, "forced-id", a.ID)
	assert.Equal(t, f.actor.UserID, a.CreatedBy)
	assert.Equal(t, model.AgendaScheduled, a.Status)
	require.NotNil(t, a.Creator)
	assert.Equal(t, "Agnes", a.Creator.Name)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, notify.Event{
		Type:     KindAgenda,
		Action:   notify.ActionCreate,
		RecordID: a.ID,
		Data:     a,
		SenderID: f.actor.UserID,
	}, events[0])
}

func TestRecords_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.kind(t, KindAgenda).Create(ctx, f.actor, map[string]any{"judul": "Tanpa tanggal", "lokasi": "  "})
	require.ErrorIs(t, err, ErrMissingFields)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 400, e.HttpCode)
	assert.Equal(t, "Missing required fields: tanggal, waktu, lokasi, jenis, peserta", e.Message)

	body := map[string]any{
		"judul": "Laporan", "deskripsi": "x", "prioritas": "Tinggi", "deadline": "2026-11-01",
		"kategori": "Administrasi", "penanggungJawab": "Agnes", "progress": "banyak",
	}
	_, err = f.kind(t, KindTasks).Create(ctx, f.actor, body)
	assert.ErrorIs(t, err, ErrInvalidField)

	assert.Empty(t, f.events.all())
}

func TestRecords_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agenda := f.kind(t, KindAgenda)

	for _, b := range []map[string]any{
		agendaBody("Rapat Kuria", "2026-10-01"),
		agendaBody("Misa Krisma", "2026-10-03"),
	} {
		_, err := agenda.Create(ctx, f.actor, b)
		require.NoError(t, err)
	}
	misa := agendaBody("Misa Pemberkatan", "2026-10-02")
	misa["jenis"] = "Misa"
	misa["status"] = "Selesai"
	_, err := agenda.Create(ctx, f.actor, misa)
	require.NoError(t, err)

	titles := func(q url.Values) []string {
		list, total, err := agenda.List(ctx, q)
		require.NoError(t, err)
		items := list.([]model.Agenda)
		assert.Equal(t, len(items), total)
		out := make([]string, len(items))
		for i, a := range items {
			out[i] = a.Judul
		}
		return out
	}

	assert.Equal(t, []string{"Misa Krisma", "Misa Pemberkatan", "Rapat Kuria"}, titles(url.Values{}))
	assert.Equal(t, []string{"Misa Krisma", "Misa Pemberkatan", "Rapat Kuria"}, titles(url.Values{"jenis": {"semua"}}))
	assert.Equal(t, []string{"Misa Pemberkatan"}, titles(url.Values{"jenis": {"Misa"}}))
	assert.Equal(t, []string{"Misa Krisma", "Misa Pemberkatan"}, titles(url.Values{"search": {"misa"}}))
	assert.Equal(t, []string{"Misa Krisma"}, titles(url.Values{"search": {"misa"}, "status": {"Dijadwalkan"}}))
}

func TestRecords_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agenda := f.kind(t, KindAgenda)

	created, err := agenda.Create(ctx, f.actor, agendaBody("Rapat Kuria", "2026-10-01"))
	require.NoError(t, err)
	id := created.(*model.Agenda).ID

	got, err := agenda.Update(ctx, f.actor, id, map[string]any{"status": "Dibatalkan", "createdBy": "x"})
	require.NoError(t, err)
	a := got.(*model.Agenda)
	assert.Equal(t, "Dibatalkan", a.Status)
	assert.Equal(t, "Rapat Kuria", a.Judul)
	assert.Equal(t, f.actor.UserID, a.CreatedBy)

	_, err = agenda.Update(ctx, f.actor, "missing", map[string]any{"status": "x"})
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.EqualError(t, err, "Agenda not found")

	require.NoError(t, agenda.Delete(ctx, f.actor, id))
	err = agenda.Delete(ctx, f.actor, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = agenda.Get(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	events := f.events.all()
	require.Len(t, events, 3)
	assert.Equal(t, notify.ActionUpdate, events[1].Action)
	assert.Equal(t, notify.ActionDelete, events[2].Action)
	assert.Equal(t, id, events[2].RecordID)
}

func TestRecords_TaskProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tasks := f.kind(t, KindTasks)

	created, err := tasks.Create(ctx, f.actor, map[string]any{
		"judul": "Laporan tahunan", "deskripsi": "Susun laporan", "prioritas": "Sedang",
		"deadline": "2026-12-01", "kategori": "Administrasi", "penanggungJawab": "Agnes",
	})
	require.NoError(t, err)
	task := created.(*model.Task)
	assert.Equal(t, model.TaskWaiting, task.Status)
	assert.Zero(t, task.Progress)

	got, err := tasks.Update(ctx, f.actor, task.ID, map[string]any{"progress": 40})
	require.NoError(t, err)
	assert.Equal(t, model.TaskInProgress, got.(*model.Task).Status)
	assert.Nil(t, got.(*model.Task).CompletedAt)

	got, err = tasks.Update(ctx, f.actor, task.ID, map[string]any{"progress": 100})
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, got.(*model.Task).Status)
	assert.NotNil(t, got.(*model.Task).CompletedAt)

	got, err = tasks.Update(ctx, f.actor, task.ID, map[string]any{"progress": 0})
	require.NoError(t, err)
	assert.Equal(t, model.TaskWaiting, got.(*model.Task).Status)
	assert.Equal(t, 0, got.(*model.Task).Progress)
	assert.Nil(t, got.(*model.Task).CompletedAt)
}

func TestRecords_ImamDoesNotPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	imam := f.kind(t, KindImam)

	created, err := imam.Create(ctx, f.actor, map[string]any{
		"nama": "RD. Yohanes", "paroki": "Paroki Santo Yosef", "jabatan": "Pastor Kepala",
		"tanggalTahbisan": "2001-07-10",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ImamActive, created.(*model.Imam).Status)

	list, _, err := imam.List(ctx, url.Values{"paroki": {"yosef"}})
	require.NoError(t, err)
	assert.Len(t, list.([]model.Imam), 1)

	assert.Empty(t, f.events.all())
}
