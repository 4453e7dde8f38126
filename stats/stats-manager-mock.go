package stats

// MockStatsManager hands out no watchers. Steps must accept a nil *StepWatcher.
type MockStatsManager struct{}

func (s *MockStatsManager) StartDumping() {}

func (s *MockStatsManager) StopDumping() {}

func (s *MockStatsManager) AddStepWatcher(stepName string) *StepWatcher {
	return nil
}

func (s *MockStatsManager) GetStats() []Stats {
	return nil
}

func NewMockStatsManager() *MockStatsManager {
	return &MockStatsManager{}
}
