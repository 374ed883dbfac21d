package domain

// User is an analyst account. IDs are chosen by the user at registration
// and never change.
type User struct {
	ID       string `json:"userid"`
	Password string `json:"-"`
}

// Report is a generated research document owned by a user. Content is
// filled from the analysis service before the report is ever persisted.
type Report struct {
	ID        int    `json:"reportid"`
	UserID    string `json:"userid"`
	Title     string `json:"title"`
	Chapter   string `json:"chapter"`
	Content   string `json:"content"`
	Indicator string `json:"indicator"`
	Company   string `json:"company"`
	Date      string `json:"date"`
}

// Chat is one question/answer turn bound to a report.
type Chat struct {
	ID       int    `json:"chatid"`
	ReportID int    `json:"reportid"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Term is a glossary entry. ReportID is nil when the term has been
// detached from a deleted report.
type Term struct {
	ID       int    `json:"-"`
	ReportID *int   `json:"-"`
	Word     string `json:"term"`
	Detail   string `json:"explanation"`
}

// NewsItem is a company news headline fetched from the analysis service.
type NewsItem struct {
	Rank          int    `json:"rank"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	Summary       string `json:"summary,omitempty"`
	Press         string `json:"press,omitempty"`
	PublishedInfo string `json:"published_info,omitempty"`
}

// Stock is a snapshot of a company quote page. All figures are kept as the
// display strings the provider returns (signs, units and thousands
// separators included).
type Stock struct {
	RetrievedAt           string `json:"retrieved_at"`
	DataTimestampInfo     string `json:"data_timestamp_info,omitempty"`
	CompanyName           string `json:"company_name"`
	StockCode             string `json:"stock_code"`
	MarketType            string `json:"market_type,omitempty"`
	ItemMainURL           string `json:"item_main_url,omitempty"`
	CurrentPrice          string `json:"current_price,omitempty"`
	PriceChange           string `json:"price_change,omitempty"`
	ChangeRate            string `json:"change_rate,omitempty"`
	YesterdayClose        string `json:"yesterday_close,omitempty"`
	OpenPrice             string `json:"open_price,omitempty"`
	HighPrice             string `json:"high_price,omitempty"`
	LowPrice              string `json:"low_price,omitempty"`
	UpperLimitPrice       string `json:"upper_limit_price,omitempty"`
	LowerLimitPrice       string `json:"lower_limit_price,omitempty"`
	Volume                string `json:"volume,omitempty"`
	VolumeValue           string `json:"volume_value,omitempty"`
	MarketCap             string `json:"market_cap,omitempty"`
	MarketCapRank         string `json:"market_cap_rank,omitempty"`
	SharesOutstanding     string `json:"shares_outstanding,omitempty"`
	ForeignOwnershipRatio string `json:"foreign_ownership_ratio,omitempty"`
	FiftyTwoWeekHigh      string `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow       string `json:"fifty_two_week_low,omitempty"`
	PERInfo               string `json:"per_info,omitempty"`
	EPSInfo               string `json:"eps_info,omitempty"`
	EstimatedPERInfo      string `json:"estimated_per_info,omitempty"`
	EstimatedEPSInfo      string `json:"estimated_eps_info,omitempty"`
	PBRInfo               string `json:"pbr_info,omitempty"`
	BPSInfo               string `json:"bps_info,omitempty"`
	DividendYieldInfo     string `json:"dividend_yield_info,omitempty"`
	IndustryPERInfo       string `json:"industry_per_info,omitempty"`
}
