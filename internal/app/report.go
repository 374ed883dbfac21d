package app

import (
	"fmt"
	"log/slog"

	"myanalyst/pkg/analysis"
	"myanalyst/pkg/domain"
)

// Fallback values applied when a request leaves company or date empty.
// These are part of the contract, not incidental.
const (
	defaultCompany = "셀트리온"
	defaultDate    = "24년 4분기"
)

// CreateReportInput carries the report creation parameters.
type CreateReportInput struct {
	UserID     string
	Title      string
	Chapter    string
	Indicator  string
	Evaluation string
	Company    string
	Date       string
}

// CreateReport generates and persists a report for an existing user. The
// owner lookup, the upstream generation call, and the report insert form
// one unit of work: either the report becomes durable with its content
// filled, or no row exists at all. Glossary terms derived by the service
// are saved best-effort afterwards and never fail the report.
func (a *App) CreateReport(in CreateReportInput) (domain.Report, error) {
	ok, err := a.store.HasUser(in.UserID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return domain.Report{}, ErrUserNotFound
	}

	company := in.Company
	if company == "" {
		company = defaultCompany
	}
	date := in.Date
	if date == "" {
		date = defaultDate
	}

	result, err := a.analysis.GenerateReport(analysis.ReportRequest{
		Title:      in.Title,
		Company:    company,
		Date:       date,
		Chapter:    in.Chapter,
		Indicator:  in.Indicator,
		Evaluation: in.Evaluation,
	})
	if err != nil {
		return domain.Report{}, upstream("generate report", err)
	}

	saved, err := a.store.CreateReport(domain.Report{
		UserID:    in.UserID,
		Title:     in.Title,
		Chapter:   in.Chapter,
		Content:   result.Content,
		Indicator: in.Indicator,
		Company:   company,
		Date:      date,
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("save report: %w", err)
	}

	a.saveDerivedTerms(saved, result.RawTerms)
	return saved, nil
}

// saveDerivedTerms persists the glossary returned alongside a generated
// report. Failures are logged and swallowed: the report is already
// committed and its availability is the primary guarantee.
func (a *App) saveDerivedTerms(report domain.Report, raw []byte) {
	decoded, err := analysis.DecodeTerms(raw)
	if err != nil {
		slog.Warn("skipping malformed domain terms", "report_id", report.ID, "err", err)
		return
	}
	if len(decoded) == 0 {
		return
	}
	terms := make([]domain.Term, 0, len(decoded))
	for _, term := range decoded {
		reportID := report.ID
		terms = append(terms, domain.Term{
			ReportID: &reportID,
			Word:     term.Term,
			Detail:   term.Explanation,
		})
	}
	if err := a.store.SaveTerms(terms); err != nil {
		slog.Warn("failed to save domain terms", "report_id", report.ID, "count", len(terms), "err", err)
	}
}

// GetReport returns a report by ID.
func (a *App) GetReport(id int) (domain.Report, error) {
	report, ok, err := a.store.GetReport(id)
	if err != nil {
		return domain.Report{}, fmt.Errorf("get report: %w", err)
	}
	if !ok {
		return domain.Report{}, ErrReportNotFound
	}
	return report, nil
}

// ListReports returns all reports in creation order.
func (a *App) ListReports() ([]domain.Report, error) {
	reports, err := a.store.ListReports()
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ListReportsByUser returns reports owned by an existing user.
func (a *App) ListReportsByUser(userID string) ([]domain.Report, error) {
	ok, err := a.store.HasUser(userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	reports, err := a.store.ListReportsByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// DeleteReport removes a report. The store cascades chat deletion and
// detaches glossary terms.
func (a *App) DeleteReport(id int) error {
	_, ok, err := a.store.GetReport(id)
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}
	if !ok {
		return ErrReportNotFound
	}
	if err := a.store.DeleteReport(id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// ListTermsByReport returns the glossary attached to an existing report.
func (a *App) ListTermsByReport(reportID int) ([]domain.Term, error) {
	_, ok, err := a.store.GetReport(reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if !ok {
		return nil, ErrReportNotFound
	}
	terms, err := a.store.ListTermsByReport(reportID)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}
