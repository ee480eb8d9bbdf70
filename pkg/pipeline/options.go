package pipeline

// Options are the per-invocation switches an operator passes on the command
// line. The zero value is a normal scheduled batch run.
type Options struct {
	// Intervention selects rows in the Intervention stage instead of the
	// driver's normal predecessor stage.
	Intervention bool

	// FdID forces a single dataset through the driver, bypassing the batch
	// query.
	FdID string

	// StagingHandle overrides the staging handle polled by a forced transfer run.
	StagingHandle string

	// TaskID overrides the transfer task checked by a forced publish run.
	TaskID string

	// SampleID, SampleIDs and ExperimentID override the catalog linkage of a
	// publish run. SampleIDs wins over the other two; SampleID and ExperimentID
	// are mutually exclusive.
	SampleID     string
	SampleIDs    []string
	ExperimentID string

	// DryPost resolves linkage and existing files without posting anything.
	DryPost bool

	// NoMove posts new files without relocating them. Rows stay in Downloading.
	NoMove bool
}

func (o Options) Forced() bool {
	return o.FdID != ""
}
