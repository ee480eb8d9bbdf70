package model

import "time"

// SyncRequest is one dataset moving through the pipeline. It is keyed by the
// provider-assigned dataset identifier (fd_id).
type SyncRequest struct {
	ID                string     `gorm:"column:fd_id;primaryKey" json:"fd_id"`
	Stage             Stage      `gorm:"column:status" json:"status"`
	SampleCount       *int       `gorm:"column:num_samples" json:"num_samples"`
	PortalID          *string    `gorm:"column:portal_id" json:"portal_id"`
	StagingHandle     *string    `gorm:"column:jgi_stage_url" json:"jgi_stage_url"`
	TransferURL       *string    `gorm:"column:globus_stage_url" json:"globus_stage_url"`
	TransferEndpoint  *string    `gorm:"column:globus_stage_endpoint" json:"globus_stage_endpoint"`
	TransferPath      *string    `gorm:"column:globus_stage_path" json:"globus_stage_path"`
	TransferTaskID    *string    `gorm:"column:globus_transfer_task_id" json:"globus_transfer_task_id"`
	TransferTaskLabel *string    `gorm:"column:globus_transfer_task_label" json:"globus_transfer_task_label"`
	SyncTimestamp     *time.Time `gorm:"column:sync_timestamp" json:"sync_timestamp"`
	UpdatedAt         *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (SyncRequest) TableName() string {
	return "sync_requests"
}

func (r SyncRequest) GetStagingHandle() string {
	return deref(r.StagingHandle)
}

func (r SyncRequest) GetTransferTaskID() string {
	return deref(r.TransferTaskID)
}

func (r SyncRequest) GetPortalID() string {
	return deref(r.PortalID)
}

func (r SyncRequest) GetTransferEndpoint() string {
	return deref(r.TransferEndpoint)
}

func (r SyncRequest) GetTransferPath() string {
	return deref(r.TransferPath)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// StringPtr is a convenience for filling in the optional columns.
func StringPtr(s string) *string {
	return &s
}

func IntPtr(i int) *int {
	return &i
}

// SyncRequestUpdate holds the stage-specific columns written together with a
// stage transition. Nil fields are left untouched.
type SyncRequestUpdate struct {
	PortalID          *string
	StagingHandle     *string
	TransferURL       *string
	TransferEndpoint  *string
	TransferPath      *string
	TransferTaskID    *string
	TransferTaskLabel *string
}

// Columns returns the column/value pairs for the non-nil fields.
func (u SyncRequestUpdate) Columns() map[string]any {
	columns := make(map[string]any)
	add := func(column string, value *string) {
		if value != nil {
			columns[column] = *value
		}
	}

	add("portal_id", u.PortalID)
	add("jgi_stage_url", u.StagingHandle)
	add("globus_stage_url", u.TransferURL)
	add("globus_stage_endpoint", u.TransferEndpoint)
	add("globus_stage_path", u.TransferPath)
	add("globus_transfer_task_id", u.TransferTaskID)
	add("globus_transfer_task_label", u.TransferTaskLabel)

	return columns
}

// ApplyTo copies the non-nil fields onto r.
func (u SyncRequestUpdate) ApplyTo(r *SyncRequest) {
	set := func(dst **string, value *string) {
		if value != nil {
			v := *value
			*dst = &v
		}
	}

	set(&r.PortalID, u.PortalID)
	set(&r.StagingHandle, u.StagingHandle)
	set(&r.TransferURL, u.TransferURL)
	set(&r.TransferEndpoint, u.TransferEndpoint)
	set(&r.TransferPath, u.TransferPath)
	set(&r.TransferTaskID, u.TransferTaskID)
	set(&r.TransferTaskLabel, u.TransferTaskLabel)
}
