package azdata

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/streamtable/streamtable"
)

// failedIndexPattern extracts the zero-based action index aztables embeds in
// a batch failure's OData message value, e.g.
// "0:The specified entity already exists.".
var failedIndexPattern = regexp.MustCompile(`^(\d+):`)

// odataErrorBody mirrors the slice of the OData error envelope a failed
// batch response carries: {"odata.error":{"code":"...","message":{"value":"0:..."}}}.
type odataErrorBody struct {
	ODataError struct {
		Code    string `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"odata.error"`
}

// classifyTransactionError wraps a SubmitTransaction failure as a
// streamtable.TransactionError, carrying the backend error code and, when
// the response body reports one, the failed action's index. The index lives
// in the OData message body, not in ErrorCode, so it is read off the raw
// response rather than parsed from respErr.ErrorCode.
func classifyTransactionError(err error) error {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return err
	}

	return &streamtable.TransactionError{
		Code:        respErr.ErrorCode,
		FailedIndex: failedIndexFromResponse(respErr),
		Err:         respErr,
	}
}

// failedIndexFromResponse reads and parses the response body aztables
// attaches to respErr, returning -1 if the body is absent, unparseable, or
// doesn't carry an index prefix.
func failedIndexFromResponse(respErr *azcore.ResponseError) int {
	if respErr.RawResponse == nil || respErr.RawResponse.Body == nil {
		return -1
	}
	body, err := io.ReadAll(respErr.RawResponse.Body)
	if err != nil || len(body) == 0 {
		return -1
	}

	var parsed odataErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return -1
	}
	m := failedIndexPattern.FindStringSubmatch(parsed.ODataError.Message.Value)
	if len(m) != 2 {
		return -1
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return index
}

// classifyRequestError wraps a non-transactional request failure (GetEntity,
// AddEntity, UpdateEntity, Query) as a streamtable.RequestError.
func classifyRequestError(err error) error {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return err
	}
	return &streamtable.RequestError{
		Code: respErr.ErrorCode,
		Err:  respErr,
	}
}
