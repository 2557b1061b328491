package model

import "time"

// 记录默认状态
const (
	AgendaScheduled   = "Dijadwalkan"
	TaskWaiting       = "Menunggu"
	TaskInProgress    = "Dalam Proses"
	TaskDone          = "Selesai"
	TaskLate          = "Terlambat"
	PriorityHigh      = "Tinggi"
	NotulensiDraft    = "Draft"
	NotulensiApproved = "Disetujui"
	SuratWaiting      = "Menunggu"
	DecisionPlanning  = "Dalam Perencanaan"
	DecisionDone      = "Selesai"
	ImamActive        = "Aktif"
)

// Agenda 日程
type Agenda struct {
	Base
	Owned
	Judul     string `gorm:"size:255" json:"judul"`
	Tanggal   string `gorm:"size:10;index" json:"tanggal"` // YYYY-MM-DD
	Waktu     string `gorm:"size:16" json:"waktu"`
	Lokasi    string `gorm:"size:255" json:"lokasi"`
	Jenis     string `gorm:"size:64;index" json:"jenis"`
	Peserta   string `gorm:"size:255" json:"peserta"`
	Deskripsi string `gorm:"type:text" json:"deskripsi"`
	Status    string `gorm:"size:32;index" json:"status"`
}

// TableName 表名
func (Agenda) TableName() string { return "agenda" }

// Task 任务
type Task struct {
	Base
	Owned
	Judul           string     `gorm:"size:255" json:"judul"`
	Deskripsi       string     `gorm:"type:text" json:"deskripsi"`
	Prioritas       string     `gorm:"size:32;index" json:"prioritas"`
	Status          string     `gorm:"size:32;index" json:"status"`
	Progress        int        `gorm:"default:0" json:"progress"`
	Deadline        string     `gorm:"size:10" json:"deadline"`
	Kategori        string     `gorm:"size:64;index" json:"kategori"`
	PenanggungJawab string     `gorm:"size:255" json:"penanggungJawab"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// Notulensi 会议纪要
type Notulensi struct {
	Base
	Owned
	Judul      string `gorm:"size:255" json:"judul"`
	Tanggal    string `gorm:"size:10;index" json:"tanggal"`
	Jenis      string `gorm:"size:64;index" json:"jenis"`
	Peserta    string `gorm:"size:255" json:"peserta"`
	Status     string `gorm:"size:32;index" json:"status"`
	Isi        string `gorm:"type:text" json:"isi"`
	Kesimpulan string `gorm:"type:text" json:"kesimpulan"`
}

// TableName 表名
func (Notulensi) TableName() string { return "notulensi" }

// Surat 公文
type Surat struct {
	Base
	Owned
	Nomor     string `gorm:"size:128" json:"nomor"`
	Jenis     string `gorm:"size:64;index" json:"jenis"`
	Judul     string `gorm:"size:255" json:"judul"`
	Pengirim  string `gorm:"size:255" json:"pengirim"`
	Penerima  string `gorm:"size:255" json:"penerima"`
	Tanggal   string `gorm:"size:10;index" json:"tanggal"`
	Isi       string `gorm:"type:text" json:"isi"`
	Prioritas string `gorm:"size:32;index" json:"prioritas"`
	Status    string `gorm:"size:32;index" json:"status"`
}

// TableName 表名
func (Surat) TableName() string { return "surat" }

// Decision 决议
type Decision struct {
	Base
	Owned
	Judul           string `gorm:"size:255" json:"judul"`
	Deskripsi       string `gorm:"type:text" json:"deskripsi"`
	Status          string `gorm:"size:32;index" json:"status"`
	Progress        int    `gorm:"default:0" json:"progress"`
	TargetDate      string `gorm:"size:10" json:"targetDate"`
	Kategori        string `gorm:"size:64;index" json:"kategori"`
	PenanggungJawab string `gorm:"size:255" json:"penanggungJawab"`
}

// Imam 神父名册
type Imam struct {
	Base
	Nama            string `gorm:"size:255;index" json:"nama"`
	Paroki          string `gorm:"size:255" json:"paroki"`
	Jabatan         string `gorm:"size:128" json:"jabatan"`
	Status          string `gorm:"size:32;index" json:"status"`
	TanggalTahbisan string `gorm:"size:10" json:"tanggalTahbisan"`
	NomorTelepon    string `gorm:"size:64" json:"nomorTelepon"`
	Email           string `gorm:"size:191" json:"email"`
	Alamat          string `gorm:"type:text" json:"alamat"`
}

// TableName 表名
func (Imam) TableName() string { return "imam" }
