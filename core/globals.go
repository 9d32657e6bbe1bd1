package core

import "sync"

var (
	// modelsMu guards modelsGlobal
	modelsMu sync.Mutex

	// modelsGlobal holds trained models keyed by hyperparameters, so a
	// long-running server trains each configuration once.
	modelsGlobal = map[ModelOptions]*RiskModel{}
)

// sharedModel returns the trained model for opts, training it on first use.
func sharedModel(opts ModelOptions) (*RiskModel, error) {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	if m, ok := modelsGlobal[opts]; ok {
		return m, nil
	}
	m, err := NewRiskModel(opts)
	if err != nil {
		return nil, err
	}
	modelsGlobal[opts] = m
	return m, nil
}
