// Package backend - клиент JSON HTTP API бэкенда оценки кандидатов.
// Каждая операция - один запрос без повторов; ошибки возвращаются как *Error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
)

// Ограничение на размер тела ошибки, которое попадает в Detail
const maxErrorBody = 4 << 10

// DefaultBaseURL используется, если адрес бэкенда не задан в конфигурации
const DefaultBaseURL = "http://localhost:8000"

// Client выполняет запросы к бэкенду
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает клиент. Если httpClient == nil, используется клиент без таймаута:
// время жизни запроса ограничивает только контекст вызывающего.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL возвращает адрес бэкенда
func (c *Client) BaseURL() string {
	return c.baseURL
}

type submitResponse struct {
	ID int `json:"id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// SubmitCandidate отправляет анкету (POST /candidates) и возвращает идентификатор,
// назначенный бэкендом.
func (c *Client) SubmitCandidate(ctx context.Context, submission entity.CandidateSubmission) (int, error) {
	var resp submitResponse
	if err := c.do(ctx, KindSubmission, http.MethodPost, "/candidates", "", submission, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// EvaluationStatus получает статус оценки анкеты (GET /candidates/{id}/status)
func (c *Client) EvaluationStatus(ctx context.Context, candidateID int) (entity.EvaluationStatus, error) {
	var resp statusResponse
	path := fmt.Sprintf("/candidates/%d/status", candidateID)
	if err := c.do(ctx, KindStatus, http.MethodGet, path, "", nil, &resp); err != nil {
		return entity.EvaluationUnknown, err
	}
	return entity.ParseEvaluationStatus(resp.Status), nil
}

// Login аутентифицирует работодателя (POST /employer/login) и возвращает токен
func (c *Client) Login(ctx context.Context, credentials entity.Credentials) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, KindAuth, http.MethodPost, "/employer/login", "", credentials, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &Error{Kind: KindAuth, StatusCode: 0, Detail: "empty token in login response"}
	}
	return resp.Token, nil
}

// ListCandidates получает всех кандидатов (GET /candidates) с токеном из сессии работодателя
func (c *Client) ListCandidates(ctx context.Context, session entity.EmployerSession) ([]entity.CandidateRecord, error) {
	if session.IsZero() {
		return nil, &Error{Kind: KindFetch, Detail: "missing bearer token"}
	}
	var resp []entity.CandidateRecord
	if err := c.do(ctx, KindFetch, http.MethodGet, "/candidates", session.Token, nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []entity.CandidateRecord{}
	}
	return resp, nil
}

// do выполняет один запрос и разбирает ответ в out
func (c *Client) do(ctx context.Context, kind ErrorKind, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: kind, Detail: fallbackFor(kind), Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: kind, Detail: fallbackFor(kind), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: kind, Detail: fallbackFor(kind), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = fallbackFor(kind)
		}
		return &Error{Kind: kind, StatusCode: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: kind, StatusCode: resp.StatusCode, Detail: "malformed response body", Err: err}
	}
	return nil
}
