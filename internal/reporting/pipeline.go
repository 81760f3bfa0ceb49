package reporting

import (
	"github.com/ibis-project/kedro-ibis-tutorial/internal/flights"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

const (
	DatasetFlightsMetric     = "flights_metric"
	DatasetAirlineJuneDelays = "airline_june_delays"
	DatasetOriginLateShare   = "origin_late_share"
)

const Tag = "reporting"

func NewPipeline(logger logging.Logger) *pipeline.Pipeline {
	n := NewNodes(logger)
	return pipeline.New(
		pipeline.NewNode(
			"convert_distance",
			pipeline.Func1(n.MetricDistance),
			[]string{flights.DatasetFlights},
			[]string{DatasetFlightsMetric},
			Tag,
		),
		pipeline.NewNode(
			"average_june_delays",
			pipeline.Func1(n.AirlineJuneDelays),
			[]string{flights.DatasetFlights},
			[]string{DatasetAirlineJuneDelays},
			Tag,
		),
		pipeline.NewNode(
			"share_late_by_origin",
			pipeline.Func1(n.OriginLateShare),
			[]string{flights.DatasetFlights},
			[]string{DatasetOriginLateShare},
			Tag,
		),
	)
}
