package factory

import (
	"time"

	"github.com/mcoot/handicap-tracker/internal/dependencies/mocks"
	"github.com/mcoot/handicap-tracker/internal/extraction"
	"github.com/mcoot/handicap-tracker/internal/storage/memory"
	"github.com/mcoot/handicap-tracker/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// extractor may be nil.
func NewTestApp(extractor extraction.Extractor) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	app := newWithDependencies(store, mockClock, mockIDs, extractor, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
