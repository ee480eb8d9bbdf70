package globus

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory stand-in for the Globus Transfer API. Fields may be
// set directly by tests; submissions are recorded in Submitted.
type MockClient struct {
	mu sync.Mutex

	Err             error
	SubmitErr       error
	LoginActive     bool
	Activated       map[string]bool
	ActivationCode  string
	ActiveTasks     int
	SubmissionCode  string
	Tasks           map[string]Task
	TransfersByTask map[string][]TransferItem

	Submitted   []TransferSubmission
	Activations []string
	nextTaskID  int
}

func NewMockClient() *MockClient {
	return &MockClient{
		LoginActive:     true,
		Activated:       make(map[string]bool),
		ActivationCode:  ActivatedMyProxyCode,
		SubmissionCode:  SubmissionAccepted,
		Tasks:           make(map[string]Task),
		TransfersByTask: make(map[string][]TransferItem),
	}
}

func (c *MockClient) SetTask(task Task) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Tasks[task.TaskID] = task
	return c
}

func (c *MockClient) SetTransfersForTask(taskID string, items []TransferItem) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TransfersByTask[taskID] = items
	return c
}

func (c *MockClient) Whoami(_ context.Context) (LoginStatus, error) {
	if c.Err != nil {
		return LoginStatus{}, c.Err
	}

	return LoginStatus{Active: c.LoginActive}, nil
}

func (c *MockClient) EndpointIsActivated(_ context.Context, endpointID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}

	return c.Activated[endpointID], nil
}

func (c *MockClient) ActivateEndpoint(_ context.Context, endpointID string, _ MyProxyCredentials) (ActivationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return ActivationResult{}, c.Err
	}

	c.Activations = append(c.Activations, endpointID)
	if c.ActivationCode == ActivatedMyProxyCode {
		c.Activated[endpointID] = true
	}

	return ActivationResult{Code: c.ActivationCode}, nil
}

func (c *MockClient) ActiveTaskCount(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}

	return c.ActiveTasks, nil
}

func (c *MockClient) SubmitTransfer(_ context.Context, s TransferSubmission) (TransferSubmissionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return TransferSubmissionResult{}, c.Err
	}

	if c.SubmitErr != nil {
		return TransferSubmissionResult{}, c.SubmitErr
	}

	c.Submitted = append(c.Submitted, s)
	if c.SubmissionCode != SubmissionAccepted {
		return TransferSubmissionResult{Code: c.SubmissionCode}, nil
	}

	c.nextTaskID++
	taskID := fmt.Sprintf("task-%d", c.nextTaskID)
	c.Tasks[taskID] = Task{TaskID: taskID, Status: TaskStatusActive, Label: s.Label}
	c.ActiveTasks++

	return TransferSubmissionResult{Code: SubmissionAccepted, TaskID: taskID}, nil
}

func (c *MockClient) GetTask(_ context.Context, taskID string) (Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return Task{}, c.Err
	}

	task, ok := c.Tasks[taskID]
	if !ok {
		return Task{}, fmt.Errorf("%w: task %s not found", ErrGlobusAPI, taskID)
	}

	return task, nil
}

func (c *MockClient) ListSuccessfulTransfers(_ context.Context, taskID string) ([]TransferItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}

	return c.TransfersByTask[taskID], nil
}
