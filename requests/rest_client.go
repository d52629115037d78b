// Package requests provides a small JSON REST client, used for talking to
// the OpenStack identity and compute APIs.
package requests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ApiError is returned for any response with a status code >= 400. The raw
// body is kept so callers can surface the provider's own message.
type ApiError struct {
	StatusCode   int
	ResponseBody []byte
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.ResponseBody)
}

type RestClient struct {
	*HttpClient
}

func NewRestClient() *RestClient {
	c := &RestClient{
		HttpClient: NewHttpClient(),
	}
	c.Header.Set("Accept", "application/json")
	return c
}

// SetAuthToken attaches a keystone-style token to every subsequent request.
func (c *RestClient) SetAuthToken(token string) {
	c.Header.Set("X-Auth-Token", token)
}

// GetJSON issues a GET and decodes the JSON response body into v.
func (c *RestClient) GetJSON(url string, v interface{}) error {
	req, err := c.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	return readJsonBody(res, v)
}

// PostJSON issues a POST with a JSON-encoded payload and decodes the JSON
// response body into v (which may be nil). The response is returned so
// callers can read headers such as X-Subject-Token.
func (c *RestClient) PostJSON(url string, payload, v interface{}) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := c.NewRequest("POST", url, bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if err := readJsonBody(res, v); err != nil {
		return res, err
	}
	return res, nil
}

func (c *RestClient) Delete(url string) error {
	req, err := c.NewRequest("DELETE", url, nil)
	if err != nil {
		return err
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	return readJsonBody(res, nil)
}

func readJsonBody(res *http.Response, v interface{}) error {
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= 400 {
		return &ApiError{StatusCode: res.StatusCode, ResponseBody: data}
	}
	if v == nil || len(data) == 0 {
		return nil
	}
	if !strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		return &ApiError{StatusCode: res.StatusCode, ResponseBody: data}
	}
	return json.Unmarshal(data, v)
}
