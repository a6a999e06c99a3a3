package stages

import "time"

// NewDefaultRegistry wires every stage executor with the template
// collaborator implementations, all backed by one container runner.
// This is the stock pipeline: real adopters register executors built on
// their own Publisher/Deployer/Prober implementations instead.
func NewDefaultRegistry(runner ContainerRunner, image string, probeTimeout time.Duration) *Registry {
	registry := NewRegistry()
	registry.Register(NewBuildExecutor(runner))
	registry.Register(NewUnitTestExecutor(runner))
	registry.Register(NewDeliverExecutor(NewPlaceholderPublisher(runner, image)))
	registry.Register(NewDeployExecutor(NewPlaceholderDeployer(runner, image)))
	registry.Register(NewValidateExecutor(NewPlaceholderProber(runner, image, probeTimeout)))
	registry.Register(NewIntegrationTestExecutor(runner))
	return registry
}
