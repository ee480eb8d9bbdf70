package pipeline

import (
	"context"

	"github.com/glbrc/seqsync/pkg/catalog"
	"github.com/glbrc/seqsync/pkg/globus"
	"github.com/glbrc/seqsync/pkg/staging"
)

// StagingService is the part of the staging provider the drivers use.
// *staging.Client and *staging.MockClient implement it.
type StagingService interface {
	ResolveProjectID(ctx context.Context, datasetID string) (string, error)
	RequestStaging(ctx context.Context, portalID string) (string, error)
	PollStaging(ctx context.Context, handle string) (staging.PollResult, error)
}

// TransferService is the managed transfer service. *globus.Client and
// *globus.MockClient implement it.
type TransferService interface {
	Whoami(ctx context.Context) (globus.LoginStatus, error)
	EndpointIsActivated(ctx context.Context, endpointID string) (bool, error)
	ActivateEndpoint(ctx context.Context, endpointID string, creds globus.MyProxyCredentials) (globus.ActivationResult, error)
	ActiveTaskCount(ctx context.Context) (int, error)
	SubmitTransfer(ctx context.Context, s globus.TransferSubmission) (globus.TransferSubmissionResult, error)
	GetTask(ctx context.Context, taskID string) (globus.Task, error)
	ListSuccessfulTransfers(ctx context.Context, taskID string) ([]globus.TransferItem, error)
}

// CatalogService is the data catalog. *catalog.Client and *catalog.MockClient
// implement it.
type CatalogService interface {
	GetSampleFiles(ctx context.Context, sampleID string) (catalog.Details, error)
	GetExperimentFiles(ctx context.Context, experimentID string) (catalog.Details, error)
	GetExperimentFilesForSamples(ctx context.Context, sampleIDs []string) (catalog.Details, error)
	PostFile(ctx context.Context, target catalog.Target, relPath string) (catalog.PostResult, error)
}

// Relocator places files into archival storage. *archive.Relocator implements it.
type Relocator interface {
	Exists(path string) bool
	Relocate(src, dst string) (int64, error)
}
