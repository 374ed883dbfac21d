package store

// GORM models used for persistence. Report and chat IDs are
// database-assigned serials; user IDs come from registration.
type UserModel struct {
	ID       string `gorm:"primaryKey;size:20"`
	Password string `gorm:"not null;size:20"`
}

type ReportModel struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"not null;index;size:20"`
	Title     string `gorm:"type:text;not null"`
	Chapter   string `gorm:"type:text"`
	Content   string `gorm:"type:text;not null"`
	Indicator string `gorm:"type:text"`
	Company   string `gorm:"type:text"`
	Date      string `gorm:"type:text"`
}

type ChatModel struct {
	ID       int    `gorm:"primaryKey;autoIncrement"`
	ReportID int    `gorm:"not null;index"`
	Question string `gorm:"type:text"`
	Answer   string `gorm:"type:text"`
}

// TermModel keeps a nullable report reference so entries survive report
// deletion as detached glossary rows.
type TermModel struct {
	ID       int    `gorm:"primaryKey;autoIncrement"`
	ReportID *int   `gorm:"index"`
	Word     string `gorm:"not null;size:20"`
	Detail   string `gorm:"type:text"`
}
