package globus

import "time"

// Task status values reported by the transfer service.
const (
	TaskStatusActive    = "ACTIVE"
	TaskStatusInactive  = "INACTIVE"
	TaskStatusSucceeded = "SUCCEEDED"
	TaskStatusFailed    = "FAILED"
)

const (
	SubmissionAccepted      = "Accepted"
	ActivatedMyProxyCode    = "Activated.MyProxyCredential"
	DataTypeSuccessfulXfer  = "successful_transfer"
	DefaultMyProxyLifetimeH = 168

	transferItemDataType = "transfer_item"
	transferDataType     = "transfer"
	myProxyRequirement   = "myproxy"
)

type Task struct {
	TaskID         string `json:"task_id"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Label          string `json:"label"`
	HistoryDeleted bool   `json:"history_deleted"`
	Files          int    `json:"files"`
	FilesSkipped   int    `json:"files_skipped"`
	BytesTransfer  int64  `json:"bytes_transferred"`
	NiceStatus     string `json:"nice_status"`
}

type TaskList struct {
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Tasks  []Task `json:"DATA"`
}

type TransferItem struct {
	DataType        string `json:"DATA_TYPE"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
}

type TransferItems struct {
	Marker     int            `json:"marker"`
	NextMarker int            `json:"next_marker"`
	Transfers  []TransferItem `json:"DATA"`
}

// LoginStatus is the result of checking whether the client's credentials are
// still usable.
type LoginStatus struct {
	Active   bool   `json:"active"`
	Username string `json:"username"`
	ClientID string `json:"client_id"`
}

type MyProxyCredentials struct {
	Username      string
	Password      string
	LifetimeHours int
}

type ActivationResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TransferSubmission struct {
	SourceEndpoint      string
	SourcePath          string
	DestinationEndpoint string
	DestinationPath     string
	Label               string
	Deadline            time.Time
	Recursive           bool
	PreserveMtime       bool
}

type TransferSubmissionResult struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	TaskID       string `json:"task_id"`
	SubmissionID string `json:"submission_id"`
}

type endpoint struct {
	ID        string `json:"id"`
	Activated bool   `json:"activated"`
	ExpiresIn int    `json:"expires_in"`
}

type activationRequirement struct {
	DataType    string  `json:"DATA_TYPE"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Value       *string `json:"value"`
	Required    bool    `json:"required"`
	Private     bool    `json:"private"`
	UIName      string  `json:"ui_name,omitempty"`
	Description string  `json:"description,omitempty"`
}

type activationRequirements struct {
	DataType     string                  `json:"DATA_TYPE"`
	Requirements []activationRequirement `json:"DATA"`
}

type submissionID struct {
	Value string `json:"value"`
}

type transferItem struct {
	DataType        string `json:"DATA_TYPE"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Recursive       bool   `json:"recursive"`
}

type transferDocument struct {
	DataType            string         `json:"DATA_TYPE"`
	SubmissionID        string         `json:"submission_id"`
	SourceEndpoint      string         `json:"source_endpoint"`
	DestinationEndpoint string         `json:"destination_endpoint"`
	Label               string         `json:"label"`
	Deadline            string         `json:"deadline,omitempty"`
	PreserveTimestamp   bool           `json:"preserve_timestamp"`
	NotifyOnSucceeded   bool           `json:"notify_on_succeeded"`
	NotifyOnFailed      bool           `json:"notify_on_failed"`
	NotifyOnInactive    bool           `json:"notify_on_inactive"`
	Items               []transferItem `json:"DATA"`
}

type tokenResponse struct {
	AccessToken    string `json:"access_token"`
	ExpiresIn      int    `json:"expires_in"`
	ResourceServer string `json:"resource_server"`
	TokenType      string `json:"token_type"`
}
