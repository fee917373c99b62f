package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/terra-clan/careerprep/internal/models"
)

// Client is a Go SDK for the careerprep API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new careerprep client.
// Interview turns wait on a model, so the default timeout is generous.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error answered by the API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s - %s", e.StatusCode, e.Code, e.Message)
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListOptions contains options for listing interviews
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := call[map[string]string](ctx, c, http.MethodGet, "/health", nil)
	return err
}

// ListQuestions retrieves the assessment questions
func (c *Client) ListQuestions(ctx context.Context) ([]*models.AssessmentQuestion, error) {
	data, err := call[struct {
		Questions []*models.AssessmentQuestion `json:"questions"`
	}](ctx, c, http.MethodGet, "/api/v1/catalog/questions", nil)
	if err != nil {
		return nil, err
	}
	return data.Questions, nil
}

// ListCareers retrieves the career paths
func (c *Client) ListCareers(ctx context.Context) ([]*models.CareerPath, error) {
	data, err := call[struct {
		Careers []*models.CareerPath `json:"careers"`
	}](ctx, c, http.MethodGet, "/api/v1/catalog/careers", nil)
	if err != nil {
		return nil, err
	}
	return data.Careers, nil
}

// Assess scores assessment answers and returns matches with a roadmap
func (c *Client) Assess(ctx context.Context, req models.AssessmentRequest) (*models.AssessmentResponse, error) {
	return jsonCall[*models.AssessmentResponse](ctx, c, http.MethodPost, "/api/v1/assessment", req)
}

// Chat sends a message to the career counselor. On failure the returned
// response still carries the apology reply when the server sent one.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	return jsonCall[*models.ChatResponse](ctx, c, http.MethodPost, "/api/v1/chat", req)
}

// InterviewTurn requests the next stateless interview turn
func (c *Client) InterviewTurn(ctx context.Context, req models.InterviewTurnRequest) (*models.InterviewTurnResponse, error) {
	return jsonCall[*models.InterviewTurnResponse](ctx, c, http.MethodPost, "/api/v1/interview/turn", req)
}

// AnalyzeResume uploads a PDF or DOCX resume for analysis
func (c *Client) AnalyzeResume(ctx context.Context, filename string, file io.Reader) (*models.ResumeAnalysisResponse, error) {
	body, contentType, err := resumeForm(filename, file, nil)
	if err != nil {
		return nil, err
	}
	return call[*models.ResumeAnalysisResponse](ctx, c, http.MethodPost, "/api/v1/resume/analyze", body, withContentType(contentType))
}

// StartInterview starts an interview session from extracted resume text
func (c *Client) StartInterview(ctx context.Context, role, resumeText string) (*models.InterviewSession, error) {
	return jsonCall[*models.InterviewSession](ctx, c, http.MethodPost, "/api/v1/interviews", models.StartInterviewRequest{
		Role:       role,
		ResumeText: resumeText,
	})
}

// StartInterviewWithFile starts an interview session from an uploaded resume
func (c *Client) StartInterviewWithFile(ctx context.Context, role, filename string, file io.Reader) (*models.InterviewSession, error) {
	body, contentType, err := resumeForm(filename, file, map[string]string{"role": role})
	if err != nil {
		return nil, err
	}
	return call[*models.InterviewSession](ctx, c, http.MethodPost, "/api/v1/interviews", body, withContentType(contentType))
}

// GetInterview retrieves an interview session by ID
func (c *Client) GetInterview(ctx context.Context, id string) (*models.InterviewSession, error) {
	return call[*models.InterviewSession](ctx, c, http.MethodGet, "/api/v1/interviews/"+url.PathEscape(id), nil)
}

// ListInterviews lists interview sessions, newest first
func (c *Client) ListInterviews(ctx context.Context, opts ListOptions) ([]*models.InterviewSession, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/v1/interviews"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	data, err := call[struct {
		Interviews []*models.InterviewSession `json:"interviews"`
	}](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return data.Interviews, nil
}

// SubmitAnswer answers the current question. When the turn fails the
// session is returned along with the error, with its retry pending.
func (c *Client) SubmitAnswer(ctx context.Context, id, answer string) (*models.InterviewSession, error) {
	return jsonCall[*models.InterviewSession](ctx, c, http.MethodPost,
		"/api/v1/interviews/"+url.PathEscape(id)+"/answers", models.SubmitAnswerRequest{Answer: answer})
}

// RetryTurn resubmits the last failed turn
func (c *Client) RetryTurn(ctx context.Context, id string) (*models.InterviewSession, error) {
	return call[*models.InterviewSession](ctx, c, http.MethodPost, "/api/v1/interviews/"+url.PathEscape(id)+"/retry", nil)
}

// SaveResult stores the result of an interview
func (c *Client) SaveResult(ctx context.Context, result models.InterviewResult) error {
	_, err := jsonCall[map[string]string](ctx, c, http.MethodPost,
		"/api/v1/interviews/"+url.PathEscape(result.InterviewID)+"/result", result)
	return err
}

// GetResult retrieves the stored result of an interview
func (c *Client) GetResult(ctx context.Context, id string) (*models.InterviewResult, error) {
	return call[*models.InterviewResult](ctx, c, http.MethodGet, "/api/v1/interviews/"+url.PathEscape(id)+"/result", nil)
}

type requestOption func(*http.Request)

func withContentType(contentType string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Content-Type", contentType)
	}
}

func jsonCall[T any](ctx context.Context, c *Client, method, path string, payload interface{}) (T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to marshal request: %w", err)
	}
	return call[T](ctx, c, method, path, bytes.NewReader(body), withContentType("application/json"))
}

// call performs a request and unwraps the response envelope. Data sent
// alongside an error is returned too.
func call[T any](ctx context.Context, c *Client, method, path string, body io.Reader, opts ...requestOption) (T, error) {
	var result envelope[T]

	status, respBody, err := c.doRequest(ctx, method, path, body, opts...)
	if err != nil {
		return result.Data, err
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return result.Data, fmt.Errorf("failed to unmarshal response (HTTP %d): %w", status, err)
	}

	if !result.Success || status >= 400 {
		apiErr := &APIError{StatusCode: status}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return result.Data, apiErr
	}

	return result.Data, nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, opts ...requestOption) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

func resumeForm(filename string, file io.Reader, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	part, err := mw.CreateFormFile("resume", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to read resume: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}
