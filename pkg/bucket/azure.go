package bucket

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

type azureBucket struct {
	name   string
	client *azblob.Client
}

// AzureClientOption is a function type for configuring Azure Blob Storage client options.
type AzureClientOption func(*azblob.ClientOptions)

// WithAzureClientOptions allows passing custom Azure client options.
func WithAzureClientOptions(opts *azblob.ClientOptions) AzureClientOption {
	return func(o *azblob.ClientOptions) {
		*o = *opts
	}
}

// NewAzureBucket creates a Bucket that manages objects in Azure Blob Storage.
// The credential is usually azidentity.DefaultAzureCredential, which supports:
// - Environment variables (AZURE_TENANT_ID, AZURE_CLIENT_ID, AZURE_CLIENT_SECRET)
// - Managed Identity
// - Azure CLI credentials
//
// The serviceURL should be in the format: https://<account-name>.blob.core.windows.net/
func NewAzureBucket(ctx context.Context, serviceURL, name string, credential azcore.TokenCredential, optFns ...AzureClientOption) (Bucket, error) {
	clientOpts := &azblob.ClientOptions{}
	for _, fn := range optFns {
		fn(clientOpts)
	}

	client, err := azblob.NewClient(serviceURL, credential, clientOpts)
	if err != nil {
		return nil, wrapError(err, isAzureNotFound, "failed to create Azure client")
	}

	return &azureBucket{
		name:   name,
		client: client,
	}, nil
}

// NewAzureSharedKeyBucket creates a Bucket authenticated by a storage account name and key.
func NewAzureSharedKeyBucket(ctx context.Context, serviceURL, name, accountName, accountKey string, optFns ...AzureClientOption) (Bucket, error) {
	clientOpts := &azblob.ClientOptions{}
	for _, fn := range optFns {
		fn(clientOpts)
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, wrapError(err, isAzureNotFound, "invalid shared key for %s", accountName)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, clientOpts)
	if err != nil {
		return nil, wrapError(err, isAzureNotFound, "failed to create Azure client")
	}

	return &azureBucket{
		name:   name,
		client: client,
	}, nil
}

func (b *azureBucket) Put(ctx context.Context, key string, data io.Reader, objectSize int64) error {
	ct := contentType(key)

	_, err := b.client.UploadStream(ctx, b.name, key, data, &azblob.UploadStreamOptions{
		BlockSize: 4 * 1024 * 1024, // 4 MiB blocks
		Metadata:  map[string]*string{},
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &ct,
		},
	})
	if err != nil {
		return wrapError(err, isAzureNotFound, "failed to put %s/%s", b.name, key)
	}
	return nil
}

func (b *azureBucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(ctx, b.name, key, nil)
	if err != nil {
		return nil, wrapError(err, isAzureNotFound, "failed to get %s/%s", b.name, key)
	}

	return resp.Body, nil
}

func (b *azureBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	pager := b.client.NewListBlobsFlatPager(b.name, &container.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, wrapError(err, isAzureNotFound, "failed to list %s/%s", b.name, prefix)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}

	return keys, nil
}

func isAzureNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound)
}
