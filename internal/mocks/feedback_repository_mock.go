package mocks

import (
	"context"

	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/lshigami/QuizBomber/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockFeedbackRepository is a mock type for the FeedbackRepository type
type MockFeedbackRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, entry
func (_m *MockFeedbackRepository) Create(ctx context.Context, entry *model.FeedbackEntry) error {
	ret := _m.Called(ctx, entry)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *model.FeedbackEntry) error); ok {
		r0 = rf(ctx, entry)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// FindAll provides a mock function with given fields: ctx
func (_m *MockFeedbackRepository) FindAll(ctx context.Context) ([]model.FeedbackEntry, error) {
	ret := _m.Called(ctx)

	var r0 []model.FeedbackEntry
	if rf, ok := ret.Get(0).(func(context.Context) []model.FeedbackEntry); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.FeedbackEntry)
		}
	}

	return r0, ret.Error(1)
}

// NewMockFeedbackRepository creates a new instance of MockFeedbackRepository.
func NewMockFeedbackRepository(t interface {
	mock.TestingT
	Helper()
}) *MockFeedbackRepository {
	m := &MockFeedbackRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.FeedbackRepository = (*MockFeedbackRepository)(nil)
