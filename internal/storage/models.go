package storage

import "time"

// Tariff holds metadata about a named rate schedule.
type Tariff struct {
	Key        string `json:"key" gorm:"primaryKey;column:key"`
	Name       string `json:"name" gorm:"column:name"`
	Currency   string `json:"currency" gorm:"column:currency"`
	LandingURL string `json:"landingUrl" gorm:"column:landing_url"`
	PDFPath    string `json:"pdfPath" gorm:"column:pdf_path"`
	Notes      string `json:"notes,omitempty" gorm:"column:notes"`
}

// TariffSnapshot stores a parsed rate schedule (JSON-encoded bands) for a tariff.
type TariffSnapshot struct {
	ID        uint      `json:"-" gorm:"primaryKey;column:id"`
	Tariff    string    `json:"tariff" gorm:"column:tariff;index"`
	Payload   []byte    `json:"payload" gorm:"column:payload"`
	Source    string    `json:"source" gorm:"column:source"`
	FetchedAt time.Time `json:"fetched_at" gorm:"column:fetched_at"`
}

// Preferences is the per-owner UI state kept across sessions.
type Preferences struct {
	Owner     string    `json:"owner" gorm:"primaryKey;column:owner"`
	DarkMode  bool      `json:"dark_mode" gorm:"column:dark_mode"`
	Visited   bool      `json:"visited" gorm:"column:visited"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

type Setting struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

type ScheduledJob struct {
	Name           string    `gorm:"primaryKey;column:name"`
	LastRunAt      time.Time `gorm:"column:last_run_at"`
	LastDurationMs int64     `gorm:"column:last_duration_ms"`
	LastSuccess    int       `gorm:"column:last_success"`
	LastError      string    `gorm:"column:last_error"`
}

func (Tariff) TableName() string         { return "tariffs" }
func (TariffSnapshot) TableName() string { return "tariff_snapshots" }
func (Preferences) TableName() string    { return "preferences" }
func (Setting) TableName() string        { return "settings" }
func (ScheduledJob) TableName() string   { return "scheduled_jobs" }
