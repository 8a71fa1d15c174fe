package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/thivian17/lecturelink/internal/domain"
)

func (s *implService) SubmitJob(ctx context.Context, req JobRequest) (JobHandle, error) {
	if req.Audio.Path == "" {
		return JobHandle{}, errors.New("audio attachment is required")
	}

	language := req.Language
	if language == "" {
		language = s.language
	}

	body, contentType := streamMultipart(func(w *multipart.Writer) error {
		if err := writeFilePart(w, "audio", req.Audio); err != nil {
			return err
		}
		if req.Slides != nil {
			if err := writeFilePart(w, "slides", *req.Slides); err != nil {
				return err
			}
		}
		if language != "" {
			if err := w.WriteField("language", language); err != nil {
				return fmt.Errorf("write language field: %w", err)
			}
		}
		if len(req.Options) > 0 {
			opts, err := json.Marshal(req.Options)
			if err != nil {
				return fmt.Errorf("encode options: %w", err)
			}
			if err := w.WriteField("options", string(opts)); err != nil {
				return fmt.Errorf("write options field: %w", err)
			}
		}
		return nil
	})
	defer body.Close()

	httpReq, err := s.newRequest(ctx, http.MethodPost, "/api/v1/jobs", body)
	if err != nil {
		return JobHandle{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	var handle JobHandle
	if err := s.doJSON(httpReq, &handle); err != nil {
		return JobHandle{}, fmt.Errorf("submit job: %w", err)
	}
	if handle.JobID == "" {
		return JobHandle{}, errors.New("submit job: response carried no job_id")
	}

	s.logger.Debug(ctx, "Submitted job %s (slides: %t)", handle.JobID, req.Slides != nil)
	return handle, nil
}

func (s *implService) GetStatus(ctx context.Context, jobID string) (JobStatus, error) {
	httpReq, err := s.newRequest(ctx, http.MethodGet, "/api/v1/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return JobStatus{}, err
	}

	var status JobStatus
	if err := s.doJSON(httpReq, &status); err != nil {
		return JobStatus{}, fmt.Errorf("get job status: %w", err)
	}
	status.Status = Status(strings.ToLower(string(status.Status)))
	return status, nil
}

func (s *implService) GetResult(ctx context.Context, jobID string) (JobResult, error) {
	httpReq, err := s.newRequest(ctx, http.MethodGet, "/api/v1/jobs/"+url.PathEscape(jobID)+"/result", nil)
	if err != nil {
		return JobResult{}, err
	}

	var result JobResult
	if err := s.doJSON(httpReq, &result); err != nil {
		return JobResult{}, fmt.Errorf("get job result: %w", err)
	}
	return result, nil
}

func (s *implService) GenerateSummary(ctx context.Context, documentText, title string) (domain.Summary, error) {
	payload := map[string]string{"document_text": documentText}
	if title != "" {
		payload["title"] = title
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return domain.Summary{}, fmt.Errorf("encode summary payload: %w", err)
	}

	httpReq, err := s.newRequest(ctx, http.MethodPost, "/api/v1/summaries", buf)
	if err != nil {
		return domain.Summary{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var raw json.RawMessage
	if err := s.doJSON(httpReq, &raw); err != nil {
		return domain.Summary{}, fmt.Errorf("generate summary: %w", err)
	}

	summary, err := NormalizeSummary(raw)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("generate summary: %w", err)
	}
	if summary.Title == "" {
		summary.Title = title
	}
	return summary, nil
}

func (s *implService) DeleteJob(ctx context.Context, jobID string) error {
	httpReq, err := s.newRequest(ctx, http.MethodDelete, "/api/v1/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return err
	}

	if err := s.doJSON(httpReq, nil); err != nil {
		if IsNotFound(err) {
			s.logger.Debug(ctx, "Job %s already deleted", jobID)
			return nil
		}
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

func (s *implService) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	return req, nil
}

// doJSON sends req and decodes a 2xx body into out. A nil out discards
// the body.
func (s *implService) doJSON(req *http.Request, out interface{}) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("processing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, raw := range []json.RawMessage{payload.Error, payload.Detail} {
			if msg := rawMessageText(raw); msg != "" {
				apiErr.Message = msg
				break
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// rawMessageText reads an error field that may be a string or an object
// with a message.
func rawMessageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

// streamMultipart builds the form on a goroutine so large audio files are
// never held in memory.
func streamMultipart(build func(w *multipart.Writer) error) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := build(mw)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeFilePart(w *multipart.Writer, field string, a Attachment) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	name := a.Name
	if name == "" {
		name = filepath.Base(a.Path)
	}

	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("create multipart %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s data: %w", field, err)
	}
	return nil
}
