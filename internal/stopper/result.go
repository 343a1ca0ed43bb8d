package stopper

import (
	"fmt"
	"net/http"
	"strings"
)

// NoInstancesMessage is the body returned when nothing matched.
const NoInstancesMessage = "No instances found to stop."

// Response codes.
const (
	StatusOK             = http.StatusOK
	StatusPartialSuccess = http.StatusMultiStatus
	StatusError          = http.StatusInternalServerError
)

// Result is the outcome of one invocation.
type Result struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`

	Stopped []string `json:"-"`
	Failed  []string `json:"-"`
}

func errorResult(err error) Result {
	return Result{
		StatusCode: StatusError,
		Body:       fmt.Sprintf("Error: %s", err),
	}
}

func emptyResult() Result {
	return Result{StatusCode: StatusOK, Body: NoInstancesMessage}
}

func summarize(stopped, failed []string) Result {
	body := fmt.Sprintf("Successfully initiated stop for %d instances: %s",
		len(stopped), strings.Join(stopped, ", "))

	if len(failed) == 0 {
		return Result{StatusCode: StatusOK, Body: body, Stopped: stopped}
	}

	body += fmt.Sprintf(". Failed to initiate stop for %d instances: %s",
		len(failed), strings.Join(failed, ", "))

	return Result{
		StatusCode: StatusPartialSuccess,
		Body:       body,
		Stopped:    stopped,
		Failed:     failed,
	}
}
