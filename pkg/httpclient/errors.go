package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

type remoteErrorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes a non-2xx response and maps it onto the
// storefront error taxonomy. 5xx and unparseable bodies become NETWORK_ERROR.
func ParseResponseError(resp *http.Response, remote string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.NetworkError(remote+" unavailable",
			fmt.Errorf("status %d, read body: %w", resp.StatusCode, err))
	}

	message := http.StatusText(resp.StatusCode)
	var parsed remoteErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", remote, message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(remote, message)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return apperrors.Unauthorized(qualified)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.AuthError(apperrors.ReasonRateLimited, qualified)
	default:
		return apperrors.NetworkError(remote+" unavailable",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}
}
