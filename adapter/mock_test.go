package adapter

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/stile/table"
)

// MockSysTest is a mock implementation of SysTest.
type MockSysTest struct {
	mock.Mock
}

func (m *MockSysTest) ShortName() string {
	return m.Called().String(0)
}

func (m *MockSysTest) ObjectsList() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockSysTest) RequiredQuantities() [][]string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([][]string)
}

func (m *MockSysTest) Run(ctx context.Context, a Args, data ...*table.Named) (any, error) {
	args := m.Called(ctx, a, data)
	return args.Get(0), args.Error(1)
}

// MockProvider is a mock implementation of Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) StarXGalaxyDensity() SysTest {
	return m.Called().Get(0).(SysTest)
}

func (m *MockProvider) StarXGalaxyShear() SysTest {
	return m.Called().Get(0).(SysTest)
}

func (m *MockProvider) Stat(field string) SysTest {
	return m.Called(field).Get(0).(SysTest)
}
