package infra

// ExternalInfraManager implements InfraManager for an agent managed outside
// the suite. StartAgent ignores the config and returns the known URL.
type ExternalInfraManager struct {
	url string
}

func NewExternalInfraManager(url string) *ExternalInfraManager {
	return &ExternalInfraManager{url: url}
}

func (e *ExternalInfraManager) StopAgent() error    { return nil }
func (e *ExternalInfraManager) RestartAgent() error { return nil }

func (e *ExternalInfraManager) StartAgent(_ AgentConfig) (string, error) {
	return e.url, nil
}
