package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const contentType = "application/json"

func (c *Client) getJSON(url string, q url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req, target)
}

func (c *Client) postJSON(url string, body, target interface{}) error {
	return c.sendJSON(http.MethodPost, url, body, target)
}

func (c *Client) putJSON(url string, body, target interface{}) error {
	return c.sendJSON(http.MethodPut, url, body, target)
}

func (c *Client) sendJSON(method, url string, body, target interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(c.ctx, method, url, &buf)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) delete(url string) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	return c.do(c.setHeaders(req), nil)
}

// postFile uploads a single file under the "file" form field, with any extra
// string fields alongside it.
func (c *Client) postFile(url, filename string, contents io.Reader, fields map[string]string, target interface{}) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, contents); err != nil {
		return err
	}

	for key, val := range fields {
		field, err := w.CreateFormField(key)
		if err != nil {
			return err
		}
		if _, err = io.Copy(field, strings.NewReader(val)); err != nil {
			return err
		}
	}
	w.Close()

	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, url, &b)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, target)
}

// do executes the request, maps the response status onto the error taxonomy
// and decodes the body into target when provided.
func (c *Client) do(req *http.Request, target interface{}) error {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUpstreamUnavailable, req.Method, req.URL.String(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := statusError(resp); err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return err
	}

	return nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrNotAuthenticated, resp.Status)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Status)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrAlreadyApplied, resp.Status)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, resp.Status)
	default:
		return fmt.Errorf("bad status: %s", resp.Status)
	}
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}
