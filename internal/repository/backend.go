package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Backend 后端 API 连接，所有仓库共用
// 不做重试、不做缓存、不合并并发请求，这些都交给上层服务
type Backend struct {
	baseURL    string
	httpClient *http.Client
}

// InitBackend 初始化后端连接
func InitBackend(baseURL string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError 后端返回的业务错误（4xx/5xx）
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound 判断是否为 404（如用户还没有评分，属于正常的空状态）
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// GetJSON 发送 GET 请求并解析 JSON 响应
func (b *Backend) GetJSON(path string, query url.Values, out interface{}, cookies []*http.Cookie) error {
	return b.doJSON(http.MethodGet, path, query, nil, out, cookies)
}

// PostJSON 发送 POST 请求，body 序列化为 JSON
func (b *Backend) PostJSON(path string, body, out interface{}, cookies []*http.Cookie) error {
	return b.doJSON(http.MethodPost, path, nil, body, out, cookies)
}

// PutJSON 发送 PUT 请求，body 序列化为 JSON
func (b *Backend) PutJSON(path string, body, out interface{}, cookies []*http.Cookie) error {
	return b.doJSON(http.MethodPut, path, nil, body, out, cookies)
}

// DeleteJSON 发送 DELETE 请求，body 可为空
func (b *Backend) DeleteJSON(path string, body, out interface{}, cookies []*http.Cookie) error {
	return b.doJSON(http.MethodDelete, path, nil, body, out, cookies)
}

// FormField multipart 表单中的一个文本字段
type FormField struct {
	Name  string
	Value string
}

// FormFile multipart 表单中的文件字段（电影海报）
type FormFile struct {
	Name     string
	Filename string
	Reader   io.Reader
}

// PostMultipart 发送 multipart 表单请求（电影创建/更新携带海报文件）
func (b *Backend) PostMultipart(method, path string, fields []FormField, file *FormFile, out interface{}, cookies []*http.Cookie) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("写入表单字段失败: %w", err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile(file.Name, file.Filename)
		if err != nil {
			return fmt.Errorf("创建表单文件失败: %w", err)
		}
		if _, err := io.Copy(fw, file.Reader); err != nil {
			return fmt.Errorf("写入表单文件失败: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("关闭表单失败: %w", err)
	}

	req, err := http.NewRequest(method, b.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.send(req, out, cookies)
}

func (b *Backend) doJSON(method, path string, query url.Values, body, out interface{}, cookies []*http.Cookie) error {
	fullURL := b.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return b.send(req, out, cookies)
}

// send 执行请求并统一处理错误与解码
// 浏览器带来的 Cookie 原样转发给后端
func (b *Backend) send(req *http.Request, out interface{}, cookies []*http.Cookie) error {
	req.Header.Set("Accept", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求后端失败: %w", err)
	}
	defer resp.Body.Close()

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: "请求失败，请稍后重试"}
		if isJSON {
			var payload struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
				apiErr.Message = payload.Error
			}
		}
		return apiErr
	}

	// 非 JSON 的成功响应没有可解析的内容，直接返回
	if out == nil || !isJSON {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// 成功响应但响应体为空，等同于无内容
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}
