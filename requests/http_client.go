package requests

import (
	"io"
	"net/http"
	"time"
)

const userAgent = "cloud-deploy/0_2"

type Transport interface {
	doRequest(req *http.Request) (*http.Response, error)
}

type TcpTransport struct {
	Client *http.Client
}

func NewTcpTransport() *TcpTransport {
	return &TcpTransport{
		Client: &http.Client{
			Transport: http.DefaultTransport,
			Timeout:   60 * time.Second,
		},
	}
}

func (t *TcpTransport) doRequest(req *http.Request) (*http.Response, error) {
	return t.Client.Do(req)
}

type HttpClient struct {
	Header    http.Header
	Transport Transport
}

func NewHttpClient() *HttpClient {
	c := &HttpClient{
		Header:    make(http.Header),
		Transport: NewTcpTransport(),
	}
	c.Header.Set("User-Agent", userAgent)
	return c
}

func (c *HttpClient) NewRequest(method, urlStr string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, urlStr, body)
	if err != nil {
		return nil, err
	}
	for key, vals := range c.Header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	return req, nil
}

func (c *HttpClient) Do(req *http.Request) (*http.Response, error) {
	return c.Transport.doRequest(req)
}
