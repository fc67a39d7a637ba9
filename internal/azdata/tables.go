package azdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// EnsureTableExists validates that tableName exists in the service reachable
// through serviceClient, creating it if missing. A missing table is an error
// only when creation also fails, since CreateTable racing another
// provisioner is expected and harmless.
func EnsureTableExists(ctx context.Context, serviceClient *aztables.ServiceClient, tableName string) error {
	_, err := serviceClient.CreateTable(ctx, tableName, nil)
	if err == nil {
		return nil
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.ErrorCode == "TableAlreadyExists" {
		return nil
	}
	return fmt.Errorf("azdata: ensure table %q exists: %w", tableName, err)
}
