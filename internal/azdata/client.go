package azdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/streamtable/streamtable"
)

// Client adapts an *aztables.Client to streamtable.PartitionClient. It is the
// only place in the module that imports the Azure Data Tables SDK.
type Client struct {
	table *aztables.Client
}

// New wraps an already-constructed aztables.Client. Callers needing
// credential setup should use NewWithDefaultCredential or NewWithSharedKey.
func New(table *aztables.Client) *Client {
	return &Client{table: table}
}

// NewWithSharedKey builds a Client authenticating with an account name and
// key, for local development and Azurite.
func NewWithSharedKey(serviceURL, tableName, accountName, accountKey string) (*Client, error) {
	cred, err := aztables.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azdata: shared key credential: %w", err)
	}
	client, err := aztables.NewClientWithSharedKey(serviceURL+"/"+tableName, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azdata: new client: %w", err)
	}
	return &Client{table: client}, nil
}

// NewWithDefaultCredential builds a Client authenticating via
// azidentity.DefaultAzureCredential, the production path in Azure.
func NewWithDefaultCredential(serviceURL, tableName string) (*Client, error) {
	cred, err := defaultCredential()
	if err != nil {
		return nil, err
	}
	client, err := aztables.NewClient(serviceURL+"/"+tableName, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azdata: new client: %w", err)
	}
	return &Client{table: client}, nil
}

func (c *Client) SubmitTransaction(ctx context.Context, partitionKey string, actions []streamtable.TransactionAction) (streamtable.TransactionResult, error) {
	txActions := make([]aztables.TransactionAction, len(actions))
	for i, a := range actions {
		body, err := marshalEntity(a.Row)
		if err != nil {
			return streamtable.TransactionResult{}, err
		}
		txActions[i] = aztables.TransactionAction{
			ActionType: toSDKActionType(a.Kind),
			Entity:     body,
		}
		if a.Row.ETag != "" {
			etag := azcore.ETag(a.Row.ETag)
			txActions[i].ETag = &etag
		}
	}

	resp, err := c.table.SubmitTransaction(ctx, txActions, nil)
	if err != nil {
		return streamtable.TransactionResult{}, classifyTransactionError(err)
	}

	result := streamtable.TransactionResult{Actions: make([]streamtable.TransactionActionResult, len(resp.TransactionResponses))}
	for i, r := range resp.TransactionResponses {
		etag := r.Header.Get("ETag")
		result.Actions[i] = streamtable.TransactionActionResult{ETag: streamtable.ETag(etag)}
	}
	return result, nil
}

func (c *Client) GetEntity(ctx context.Context, partitionKey, rowKey string) (streamtable.Row, error) {
	resp, err := c.table.GetEntity(ctx, partitionKey, rowKey, nil)
	if err != nil {
		if isNotFound(err) {
			return streamtable.Row{}, streamtable.ErrRowNotFound
		}
		return streamtable.Row{}, classifyRequestError(err)
	}
	row, err := unmarshalEntity(resp.Value)
	if err != nil {
		return streamtable.Row{}, err
	}
	row.ETag = streamtable.ETag(resp.ETag)
	return row, nil
}

func (c *Client) AddEntity(ctx context.Context, row streamtable.Row) (streamtable.ETag, error) {
	body, err := marshalEntity(row)
	if err != nil {
		return "", err
	}
	resp, err := c.table.AddEntity(ctx, body, nil)
	if err != nil {
		return "", classifyRequestError(err)
	}
	return streamtable.ETag(resp.ETag), nil
}

func (c *Client) UpdateEntity(ctx context.Context, row streamtable.Row, mode streamtable.UpdateMode) (streamtable.ETag, error) {
	body, err := marshalEntity(row)
	if err != nil {
		return "", err
	}
	opts := &aztables.UpdateEntityOptions{
		UpdateMode: toSDKUpdateMode(mode),
	}
	if row.ETag != "" && row.ETag != streamtable.ETag(streamtable.ETagAny) {
		etag := azcore.ETag(row.ETag)
		opts.IfMatch = &etag
	} else {
		opts.IfMatch = to.Ptr(azcore.ETagAny)
	}
	resp, err := c.table.UpdateEntity(ctx, body, opts)
	if err != nil {
		return "", classifyRequestError(err)
	}
	return streamtable.ETag(resp.ETag), nil
}

func (c *Client) Query(ctx context.Context, partitionKey, rowKeyLow, rowKeyHigh string) ([]streamtable.Row, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s' and RowKey ge '%s' and RowKey le '%s'",
		escapeODataLiteral(partitionKey), escapeODataLiteral(rowKeyLow), escapeODataLiteral(rowKeyHigh))

	pager := c.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	var rows []streamtable.Row
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, classifyRequestError(err)
		}
		for _, entity := range page.Entities {
			row, err := unmarshalEntity(entity)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func toSDKActionType(k streamtable.TransactionActionKind) aztables.TransactionType {
	switch k {
	case streamtable.ActionAdd:
		return aztables.TransactionTypeAdd
	case streamtable.ActionUpdateReplace:
		return aztables.TransactionTypeUpdateReplace
	case streamtable.ActionUpdateMerge:
		return aztables.TransactionTypeUpdateMerge
	case streamtable.ActionDelete:
		return aztables.TransactionTypeDelete
	case streamtable.ActionUpsertReplace:
		return aztables.TransactionTypeInsertReplace
	case streamtable.ActionUpsertMerge:
		return aztables.TransactionTypeInsertMerge
	default:
		return aztables.TransactionTypeAdd
	}
}

func toSDKUpdateMode(m streamtable.UpdateMode) aztables.UpdateMode {
	if m == streamtable.UpdateModeMerge {
		return aztables.UpdateModeMerge
	}
	return aztables.UpdateModeReplace
}

func escapeODataLiteral(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '\'' {
			out = append(out, '\'')
		}
	}
	return string(out)
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == 404
	}
	return false
}
