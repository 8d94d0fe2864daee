// ============================================================================
// API Client - pgpchub
// ============================================================================
// Adaptador HTTP único para el backend de la tienda. Todas las llamadas de
// los hooks genéricos (GET/POST/DELETE) pasan por aquí.
// ============================================================================

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// DefaultTimeout es el tiempo máximo por petición.
const DefaultTimeout = 15 * time.Second

const maxBodyBytes = 4 << 20

// Client es el adaptador HTTP configurado con URL base, timeout y headers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	token      func() string
}

// Option configura un Client.
type Option func(*Client)

// WithTimeout cambia el timeout por petición.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient reemplaza el *http.Client subyacente.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithHeader agrega un header por defecto.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithTokenSource agrega "Authorization: Bearer" cuando la fuente devuelve un token.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) {
		c.token = fn
	}
}

// NewClient crea un cliente para la URL base dada.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		headers: http.Header{},
	}
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL retorna la URL base sin "/" final.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resuelve un endpoint relativo contra la URL base. Los endpoints
// absolutos se respetan tal cual.
func (c *Client) URL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
}

// Get ejecuta un GET y decodifica la respuesta en out.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, "", out)
}

// Post serializa body como JSON y decodifica la respuesta en out.
func (c *Client) Post(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &RequestError{Kind: KindSend, Err: err}
	}
	return c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(payload), "application/json", out)
}

// Delete ejecuta un DELETE y decodifica la respuesta en out.
func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, "", out)
}

// FilePart es un archivo dentro de un formulario multipart.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

// MultipartForm es un cuerpo multipart/form-data.
type MultipartForm struct {
	Fields map[string]string
	Files  []FilePart
}

// PostMultipart envía un formulario multipart. El Content-Type JSON por
// defecto no se usa: lo define el writer con su boundary.
func (c *Client) PostMultipart(ctx context.Context, endpoint string, form MultipartForm, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range form.Fields {
		if err := w.WriteField(k, v); err != nil {
			return &RequestError{Kind: KindSend, Err: err}
		}
	}
	for _, f := range form.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.FileName))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return &RequestError{Kind: KindSend, Err: err}
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return &RequestError{Kind: KindSend, Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return &RequestError{Kind: KindSend, Err: err}
	}
	return c.do(ctx, http.MethodPost, endpoint, &buf, w.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint), body)
	if err != nil {
		return &RequestError{Kind: KindSend, Err: err}
	}
	for k, vals := range c.headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Kind: KindNoResponse, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &RequestError{Kind: KindNoResponse, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Kind: KindServer, Status: resp.StatusCode, Body: data}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Kind: KindDecode, Status: resp.StatusCode, Body: data, Err: fmt.Errorf("invalid json: %w", err)}
	}
	return nil
}
