// Package camundatest provides a worker.JobClient whose commands reach a
// testify mock instead of a Zeebe gateway.
package camundatest

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc"
)

// MockGateway records the job commands. Calls to other gateway methods panic.
type MockGateway struct {
	pb.GatewayClient
	mock.Mock
}

func (m *MockGateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pb.CompleteJobResponse), args.Error(1)
}

func (m *MockGateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pb.FailJobResponse), args.Error(1)
}

func (m *MockGateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pb.ThrowErrorResponse), args.Error(1)
}

// JobClient builds the real zeebe commands on top of Gateway.
type JobClient struct {
	Gateway *MockGateway
}

func NewJobClient() *JobClient {
	return &JobClient{Gateway: &MockGateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.Gateway, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.Gateway, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.Gateway, noRetry)
}

// ExpectComplete accepts one CompleteJob call for jobKey and returns the
// call so tests can read the variables sent.
func (c *JobClient) ExpectComplete(jobKey int64) *mock.Call {
	return c.Gateway.On("CompleteJob", mock.Anything, mock.MatchedBy(func(r *pb.CompleteJobRequest) bool {
		return r.JobKey == jobKey
	})).Return(&pb.CompleteJobResponse{}, nil).Once()
}

// ExpectFail accepts one FailJob call for jobKey leaving retries.
func (c *JobClient) ExpectFail(jobKey int64, retries int32) *mock.Call {
	return c.Gateway.On("FailJob", mock.Anything, mock.MatchedBy(func(r *pb.FailJobRequest) bool {
		return r.JobKey == jobKey && r.Retries == retries
	})).Return(&pb.FailJobResponse{}, nil).Once()
}

// ExpectThrow accepts one ThrowError call for jobKey with errorCode.
func (c *JobClient) ExpectThrow(jobKey int64, errorCode string) *mock.Call {
	return c.Gateway.On("ThrowError", mock.Anything, mock.MatchedBy(func(r *pb.ThrowErrorRequest) bool {
		return r.JobKey == jobKey && r.ErrorCode == errorCode
	})).Return(&pb.ThrowErrorResponse{}, nil).Once()
}

// SentVariables decodes the variables of the first recorded call to method.
func (c *JobClient) SentVariables(method string) map[string]interface{} {
	for _, call := range c.Gateway.Calls {
		if call.Method != method {
			continue
		}
		var raw string
		switch r := call.Arguments.Get(1).(type) {
		case *pb.CompleteJobRequest:
			raw = r.Variables
		case *pb.FailJobRequest:
			raw = r.Variables
		case *pb.ThrowErrorRequest:
			raw = r.Variables
		}
		vars := map[string]interface{}{}
		_ = json.Unmarshal([]byte(raw), &vars)
		return vars
	}
	return nil
}

// Job builds an activated job the way the gateway hands it to a worker.
func Job(key int64, taskType string, retries int32, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               taskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "support-conversation",
		ElementId:          "Activity_" + taskType,
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            retries,
		Variables:          variables,
	}}
}
