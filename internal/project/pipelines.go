// Package project registers the delay prediction pipelines and runs them
// against the configured data catalog.
package project

import (
	"github.com/ibis-project/kedro-ibis-tutorial/internal/evaluation"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/flights"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/reporting"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/training"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

const (
	PipelineDataProcessing = flights.Tag
	PipelineTraining       = training.Tag
	PipelineEvaluation     = evaluation.Tag
	PipelineDataScience    = "data_science"
	PipelineReporting      = reporting.Tag
)

// RegisterPipelines builds every project pipeline. The default pipeline runs
// data processing followed by data science.
func RegisterPipelines(logger logging.Logger) (*pipeline.Registry, error) {
	dataProcessing := flights.NewPipeline(logger)
	train := training.NewPipeline(logger)
	evaluate := evaluation.NewPipeline(logger)
	dataScience := train.Add(evaluate)

	registry := pipeline.NewRegistry()
	for name, p := range map[string]*pipeline.Pipeline{
		pipeline.DefaultName:   dataProcessing.Add(dataScience),
		PipelineDataProcessing: dataProcessing,
		PipelineTraining:       train,
		PipelineEvaluation:     evaluate,
		PipelineDataScience:    dataScience,
		PipelineReporting:      reporting.NewPipeline(logger),
	} {
		if err := registry.Register(name, p); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
