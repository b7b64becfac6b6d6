package mocks

import (
	"context"

	"github.com/lshigami/QuizBomber/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockGeminiLLMService is a mock type for the GeminiLLMService type
type MockGeminiLLMService struct {
	mock.Mock
}

// GenerateJSON provides a mock function with given fields: ctx, req
func (_m *MockGeminiLLMService) GenerateJSON(ctx context.Context, req service.GenerationRequest) (string, error) {
	ret := _m.Called(ctx, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, service.GenerationRequest) string); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, service.GenerationRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Close provides a mock function with no fields
func (_m *MockGeminiLLMService) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockGeminiLLMService creates a new instance of MockGeminiLLMService.
// The first argument is typically a *testing.T value.
func NewMockGeminiLLMService(t interface {
	mock.TestingT
	Helper()
}) *MockGeminiLLMService {
	m := &MockGeminiLLMService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.GeminiLLMService = (*MockGeminiLLMService)(nil)
