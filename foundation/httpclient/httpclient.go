// Package httpclient provides basic http functions
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteFileInfo contains information
type RemoteFileInfo struct {
	ETag                  string
	LastModifiedTimestamp int64
	Path                  string
}

func getRemoteFileInfo(url string, resp *http.Response) RemoteFileInfo {
	result := RemoteFileInfo{
		Path: url,
	}
	result.ETag = resp.Header.Get("ETag")

	lastModifiedString := resp.Header.Get("Last-Modified")

	if len(lastModifiedString) > 0 {
		parsedTime, err := time.Parse(time.RFC1123, lastModifiedString)
		if err == nil {
			result.LastModifiedTimestamp = parsedTime.Unix()
		}
	}
	return result

}

// FetchedFile contains a file retrieved from a url into memory
type FetchedFile struct {
	RemoteFileInfo RemoteFileInfo
	Contents       []byte
	FetchedAt      time.Time
}

// FetchRemoteFile retrieves the contents of url, failing on any non 200 response.
// The request is abandoned after timeout, zero means no timeout
func FetchRemoteFile(url string, timeout time.Duration) (*FetchedFile, error) {
	client := http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	result := FetchedFile{
		RemoteFileInfo: getRemoteFileInfo(url, resp),
		Contents:       contents,
		FetchedAt:      time.Now(),
	}
	return &result, nil
}
