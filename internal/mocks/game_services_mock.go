package mocks

import (
	"context"

	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/lshigami/QuizBomber/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockQuestionGenerator is a mock type for the QuestionGenerator type
type MockQuestionGenerator struct {
	mock.Mock
}

// BuildQuestion provides a mock function with given fields: ctx, settings
func (_m *MockQuestionGenerator) BuildQuestion(ctx context.Context, settings model.GameSettings) (*model.Question, error) {
	ret := _m.Called(ctx, settings)

	var r0 *model.Question
	if rf, ok := ret.Get(0).(func(context.Context, model.GameSettings) *model.Question); ok {
		r0 = rf(ctx, settings)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Question)
		}
	}

	return r0, ret.Error(1)
}

func NewMockQuestionGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockQuestionGenerator {
	m := &MockQuestionGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockAnswerGrader is a mock type for the AnswerGrader type
type MockAnswerGrader struct {
	mock.Mock
}

// Grade provides a mock function with given fields: ctx, promptText, answers
func (_m *MockAnswerGrader) Grade(ctx context.Context, promptText string, answers []string) (*model.Result, error) {
	ret := _m.Called(ctx, promptText, answers)

	var r0 *model.Result
	if rf, ok := ret.Get(0).(func(context.Context, string, []string) *model.Result); ok {
		r0 = rf(ctx, promptText, answers)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Result)
		}
	}

	return r0, ret.Error(1)
}

func NewMockAnswerGrader(t interface {
	mock.TestingT
	Helper()
}) *MockAnswerGrader {
	m := &MockAnswerGrader{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockRatingStore is a mock type for the RatingStore type
type MockRatingStore struct {
	mock.Mock
}

// Record provides a mock function with given fields: ctx, promptText, rating
func (_m *MockRatingStore) Record(ctx context.Context, promptText string, rating int) error {
	ret := _m.Called(ctx, promptText, rating)
	return ret.Error(0)
}

// SampleExamples provides a mock function with given fields: ctx
func (_m *MockRatingStore) SampleExamples(ctx context.Context) ([]string, []string, error) {
	ret := _m.Called(ctx)

	var r0, r1 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	if ret.Get(1) != nil {
		r1 = ret.Get(1).([]string)
	}

	return r0, r1, ret.Error(2)
}

func NewMockRatingStore(t interface {
	mock.TestingT
	Helper()
}) *MockRatingStore {
	m := &MockRatingStore{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockNarrator is a mock type for the Narrator type
type MockNarrator struct {
	mock.Mock
}

// Synthesize provides a mock function with given fields: ctx, text, language
func (_m *MockNarrator) Synthesize(ctx context.Context, text string, language string) (string, error) {
	ret := _m.Called(ctx, text, language)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	return r0, ret.Error(1)
}

func NewMockNarrator(t interface {
	mock.TestingT
	Helper()
}) *MockNarrator {
	m := &MockNarrator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var (
	_ service.QuestionGenerator = (*MockQuestionGenerator)(nil)
	_ service.AnswerGrader      = (*MockAnswerGrader)(nil)
	_ service.RatingStore       = (*MockRatingStore)(nil)
	_ service.Narrator          = (*MockNarrator)(nil)
)
