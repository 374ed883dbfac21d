package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"myanalyst/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ReportModel{}, &ChatModel{}, &TermModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Create(&model).Error
}

// HasUser checks if a user ID exists.
func (s *GormStore) HasUser(id string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUser returns a user by ID.
func (s *GormStore) GetUser(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// DeleteUser removes a user and cascades deletion of its reports, which in
// turn removes their chats and detaches their glossary terms.
func (s *GormStore) DeleteUser(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var reports []ReportModel
		if err := tx.Where("user_id = ?", id).Find(&reports).Error; err != nil {
			return err
		}
		for _, report := range reports {
			if err := deleteReportTx(tx, report.ID); err != nil {
				return err
			}
		}
		return tx.Delete(&UserModel{}, "id = ?", id).Error
	})
}

// CreateReport inserts a report and returns it with the assigned ID.
func (s *GormStore) CreateReport(r domain.Report) (domain.Report, error) {
	model := reportToModel(r)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Report{}, err
	}
	return reportFromModel(model), nil
}

// GetReport retrieves a report.
func (s *GormStore) GetReport(id int) (domain.Report, bool, error) {
	var model ReportModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Report{}, false, nil
		}
		return domain.Report{}, false, err
	}
	return reportFromModel(model), true, nil
}

// ListReports returns all reports in creation order.
func (s *GormStore) ListReports() ([]domain.Report, error) {
	return s.listReports()
}

// ListReportsByOwner returns reports filtered by owner.
func (s *GormStore) ListReportsByOwner(userID string) ([]domain.Report, error) {
	return s.listReports("user_id = ?", userID)
}

func (s *GormStore) listReports(conds ...any) ([]domain.Report, error) {
	var models []ReportModel
	tx := s.db.Order("id ASC")
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Report, 0, len(models))
	for _, m := range models {
		res = append(res, reportFromModel(m))
	}
	return res, nil
}

// DeleteReport removes a report, its chats, and nulls the report reference
// on its glossary terms, in one transaction.
func (s *GormStore) DeleteReport(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteReportTx(tx, id)
	})
}

func deleteReportTx(tx *gorm.DB, id int) error {
	if err := tx.Delete(&ChatModel{}, "report_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Model(&TermModel{}).Where("report_id = ?", id).
		Update("report_id", nil).Error; err != nil {
		return err
	}
	return tx.Delete(&ReportModel{}, "id = ?", id).Error
}

// AppendChat records a chat turn and returns it with the assigned ID.
func (s *GormStore) AppendChat(c domain.Chat) (domain.Chat, error) {
	model := chatToModel(c)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Chat{}, err
	}
	return chatFromModel(model), nil
}

// ListChatsByReport returns chat turns for a report in insertion order.
func (s *GormStore) ListChatsByReport(reportID int) ([]domain.Chat, error) {
	var models []ChatModel
	if err := s.db.Where("report_id = ?", reportID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	chats := make([]domain.Chat, 0, len(models))
	for _, m := range models {
		chats = append(chats, chatFromModel(m))
	}
	return chats, nil
}

// SaveTerms stores glossary terms in one batch.
func (s *GormStore) SaveTerms(terms []domain.Term) error {
	if len(terms) == 0 {
		return nil
	}
	models := make([]TermModel, 0, len(terms))
	for _, term := range terms {
		models = append(models, termToModel(term))
	}
	return s.db.CreateInBatches(&models, 200).Error
}

// ListTermsByReport returns glossary terms attached to a report.
func (s *GormStore) ListTermsByReport(reportID int) ([]domain.Term, error) {
	var models []TermModel
	if err := s.db.Where("report_id = ?", reportID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	terms := make([]domain.Term, 0, len(models))
	for _, m := range models {
		terms = append(terms, termFromModel(m))
	}
	return terms, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{ID: u.ID, Password: u.Password}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{ID: m.ID, Password: m.Password}
}

func reportToModel(r domain.Report) ReportModel {
	return ReportModel{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Chapter:   r.Chapter,
		Content:   r.Content,
		Indicator: r.Indicator,
		Company:   r.Company,
		Date:      r.Date,
	}
}

func reportFromModel(m ReportModel) domain.Report {
	return domain.Report{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Chapter:   m.Chapter,
		Content:   m.Content,
		Indicator: m.Indicator,
		Company:   m.Company,
		Date:      m.Date,
	}
}

func chatToModel(c domain.Chat) ChatModel {
	return ChatModel{ID: c.ID, ReportID: c.ReportID, Question: c.Question, Answer: c.Answer}
}

func chatFromModel(m ChatModel) domain.Chat {
	return domain.Chat{ID: m.ID, ReportID: m.ReportID, Question: m.Question, Answer: m.Answer}
}

func termToModel(t domain.Term) TermModel {
	return TermModel{ID: t.ID, ReportID: t.ReportID, Word: t.Word, Detail: t.Detail}
}

func termFromModel(m TermModel) domain.Term {
	return domain.Term{ID: m.ID, ReportID: m.ReportID, Word: m.Word, Detail: m.Detail}
}
