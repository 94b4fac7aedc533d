package factory

import (
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/gridfleet/seabattle/internal/dependencies/mocks"
	"github.com/gridfleet/seabattle/internal/services/session"
	"github.com/gridfleet/seabattle/internal/storage/memory"
	"github.com/gridfleet/seabattle/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *quartz.Mock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(t *testing.T) *TestApp {
	mockClock := quartz.NewMock(t)
	mockRandom := mocks.NewMockRandom()
	store := memory.New(mockClock)

	app := newWithDependencies(
		store, mockClock, mockRandom,
		time.Second, session.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
