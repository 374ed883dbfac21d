package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"myanalyst/pkg/domain"
)

// Report generation can take the service a long time; everything else on
// the same base address answers well within this.
const requestTimeout = 120 * time.Second

// Client calls the analysis service over HTTP. It holds no state between
// calls and performs no caching or retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents an analysis service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs an analysis service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// ReportRequest carries the report generation parameters. Field names are
// part of the wire contract.
type ReportRequest struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Date       string `json:"date"`
	Chapter    string `json:"chapter"`
	Indicator  string `json:"indicator"`
	Evaluation string `json:"evaluation"`
}

// ReportResult is a validated generate-report response. RawTerms holds the
// derived-terms payload undecoded so a malformed glossary cannot fail the
// report itself; callers decode it with DecodeTerms.
type ReportResult struct {
	Content  string
	RawTerms json.RawMessage
}

type reportResponse struct {
	Report                *string         `json:"report"`
	GenerationTimeSeconds float64         `json:"generation_time_seconds"`
	DomainSpecificTerms   json.RawMessage `json:"domain_specific_terms"`
}

// Term is one derived glossary entry as the service returns it.
type Term struct {
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
}

// GenerateReport asks the service to generate a report body. A response
// without a report field is a schema violation, not a success.
func (c *Client) GenerateReport(reqBody ReportRequest) (ReportResult, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return ReportResult{}, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/reports", bytes.NewReader(data))
	if err != nil {
		return ReportResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp reportResponse
	if err := c.do(req, &resp); err != nil {
		return ReportResult{}, err
	}
	if resp.Report == nil {
		return ReportResult{}, fmt.Errorf("generate report: response missing report field")
	}
	return ReportResult{Content: *resp.Report, RawTerms: resp.DomainSpecificTerms}, nil
}

// DecodeTerms decodes a derived-terms payload. Absent payloads decode to
// an empty list; malformed ones return an error for the caller to log.
func DecodeTerms(raw json.RawMessage) ([]Term, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var terms []Term
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, fmt.Errorf("decode domain terms: %w", err)
	}
	return terms, nil
}

type questionResponse struct {
	Answer   *string `json:"answer"`
	Question *string `json:"question"`
}

// AnswerQuestion asks a text question against a report body.
func (c *Client) AnswerQuestion(report, question string) (string, error) {
	data, err := json.Marshal(map[string]string{
		"report":   report,
		"question": question,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/questions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp questionResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.Answer == nil {
		return "", fmt.Errorf("answer question: response missing answer field")
	}
	return *resp.Answer, nil
}

// AudioFile is a transient in-memory audio payload forwarded to the
// transcribe-and-answer endpoint.
type AudioFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TranscribeAndAnswer sends the report body and raw audio bytes as
// multipart form data. Both the transcribed question and the answer are
// required in the response; the transcription is authoritative.
func (c *Client) TranscribeAndAnswer(report string, audio AudioFile) (question, answer string, err error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("report", report); err != nil {
		return "", "", err
	}
	part, err := createAudioPart(writer, audio)
	if err != nil {
		return "", "", err
	}
	if _, err := part.Write(audio.Data); err != nil {
		return "", "", err
	}
	if err := writer.Close(); err != nil {
		return "", "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/questions/stt", body)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp questionResponse
	if err := c.do(req, &resp); err != nil {
		return "", "", err
	}
	if resp.Question == nil || resp.Answer == nil {
		return "", "", fmt.Errorf("transcribe question: response missing question or answer field")
	}
	return *resp.Question, *resp.Answer, nil
}

func createAudioPart(writer *multipart.Writer, audio AudioFile) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="audio_file"; filename=%q`, audio.Filename))
	header.Set("Content-Type", audio.ContentType)
	return writer.CreatePart(header)
}

// CompanyNews fetches recent news headlines for a company.
func (c *Client) CompanyNews(company string) ([]domain.NewsItem, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/news/"+url.PathEscape(company), nil)
	if err != nil {
		return nil, err
	}
	var items []domain.NewsItem
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CompanyStock fetches a stock snapshot for a company.
func (c *Client) CompanyStock(company string) (domain.Stock, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/stocks/"+url.PathEscape(company), nil)
	if err != nil {
		return domain.Stock{}, err
	}
	var stock domain.Stock
	if err := c.do(req, &stock); err != nil {
		return domain.Stock{}, err
	}
	return stock, nil
}

// ChartImage fetches the rendered stock chart for a company. Returns the
// image bytes and the content type reported by the service.
func (c *Client) ChartImage(company string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet,
		c.baseURL+"/stocks/"+url.PathEscape(company)+"/chart-image", nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, "", apiError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("chart image: empty response body")
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return data, contentType, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

func apiError(resp *http.Response) error {
	var errResp struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	msg := errResp.Detail
	if msg == "" {
		msg = errResp.Error
	}
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
