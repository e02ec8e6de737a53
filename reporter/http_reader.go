// Reader is a testing facility to exercise a running http reporter.

package reporter

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
	}
}

func (hr *HttpReader) GetHello() (string, error) {
	url := "http://" + hr.serverIP + ":" + hr.serverPort + ROUTE_HELLO

	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (hr *HttpReader) GetDeposit(id string) (string, error) {
	url := "http://" + hr.serverIP + ":" + hr.serverPort + ROUTE_DEPOSIT + "?id=" + id
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (hr *HttpReader) PostReveal(req *RevealRequest) (int, error) {
	url := "http://" + hr.serverIP + ":" + hr.serverPort + ROUTE_REVEAL

	payload, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
