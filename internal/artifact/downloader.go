package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

const (
	downloadFilePatternConstant        = "winvitals-download-*.zip"
	createRequestMessageConstant       = "create request: %w"
	performRequestMessageConstant      = "download %s: %w"
	unexpectedStatusMessageConstant    = "download %s: unexpected status %s"
	createTemporaryFileMessageConstant = "create temporary file: %w"
	writeTemporaryFileMessageConstant  = "write temporary file: %w"
	closeTemporaryFileMessageConstant  = "close temporary file: %w"
)

// Downloader fetches a remote archive into a temporary file and returns its path.
type Downloader interface {
	Download(executionContext context.Context, sourceURL string, temporaryDirectory string) (string, error)
}

// HTTPDownloader implements Downloader with an HTTP GET.
type HTTPDownloader struct {
	Client *http.Client
}

// Download streams the response body into a new file inside temporaryDirectory.
// The partial file is removed when the transfer fails.
func (downloader HTTPDownloader) Download(executionContext context.Context, sourceURL string, temporaryDirectory string) (string, error) {
	client := downloader.Client
	if client == nil {
		client = http.DefaultClient
	}

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, sourceURL, nil)
	if requestError != nil {
		return "", fmt.Errorf(createRequestMessageConstant, requestError)
	}

	response, responseError := client.Do(request)
	if responseError != nil {
		return "", fmt.Errorf(performRequestMessageConstant, sourceURL, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf(unexpectedStatusMessageConstant, sourceURL, response.Status)
	}

	temporaryFile, createError := os.CreateTemp(temporaryDirectory, downloadFilePatternConstant)
	if createError != nil {
		return "", fmt.Errorf(createTemporaryFileMessageConstant, createError)
	}
	temporaryPath := temporaryFile.Name()

	if _, copyError := io.Copy(temporaryFile, response.Body); copyError != nil {
		temporaryFile.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf(writeTemporaryFileMessageConstant, copyError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		os.Remove(temporaryPath)
		return "", fmt.Errorf(closeTemporaryFileMessageConstant, closeError)
	}
	return temporaryPath, nil
}
