package api

import (
	"fmt"

	"routeopt/internal/model"
)

const maxRestarts = 32

func validateOptions(o model.OptimizationOptions) error {
	switch o.Algorithm {
	case "", model.AlgorithmNearestNeighbor, model.AlgorithmGenetic, model.AlgorithmSimulatedAnnealing,
		model.AlgorithmTwoOpt, model.AlgorithmClusterFirst:
	default:
		return fmt.Errorf("%w: invalid algorithm: %s", model.ErrInvalidInput, o.Algorithm)
	}
	switch o.ClusterAlgorithm {
	case "", model.AlgorithmNearestNeighbor, model.AlgorithmGenetic, model.AlgorithmSimulatedAnnealing, model.AlgorithmTwoOpt:
	default:
		return fmt.Errorf("%w: invalid clusterAlgorithm: %s", model.ErrInvalidInput, o.ClusterAlgorithm)
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("%w: maxIterations must be >= 0", model.ErrInvalidInput)
	}
	if o.Restarts < 0 || o.Restarts > maxRestarts {
		return fmt.Errorf("%w: restarts must be in [0,%d]", model.ErrInvalidInput, maxRestarts)
	}
	return nil
}

func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if err := validateOptions(req.Options); err != nil {
		return err
	}
	return model.Validate(req.Locations, req.Vehicles)
}
