package store

import "myanalyst/pkg/domain"

// Store defines persistence operations for users, reports, chats, and
// glossary terms. Lookups signal absence with a bool, never an error;
// translating absence into a NotFound failure is the orchestrator's job.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUser(id string) (bool, error)
	GetUser(id string) (domain.User, bool, error)
	DeleteUser(id string) error

	// reports
	CreateReport(domain.Report) (domain.Report, error)
	GetReport(id int) (domain.Report, bool, error)
	ListReports() ([]domain.Report, error)
	ListReportsByOwner(userID string) ([]domain.Report, error)
	DeleteReport(id int) error

	// chats
	AppendChat(domain.Chat) (domain.Chat, error)
	ListChatsByReport(reportID int) ([]domain.Chat, error)

	// glossary terms
	SaveTerms([]domain.Term) error
	ListTermsByReport(reportID int) ([]domain.Term, error)
}
