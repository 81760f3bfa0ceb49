package rest

import (
	"fmt"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/project"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/storage"
)

func runLink(run *storage.Run) Links {
	return Links{Self: fmt.Sprintf("/api/runs/%s", run.ID.String())}
}

func mapRunToSubmitResponse(run *storage.Run) SubmitRunResponse {
	return SubmitRunResponse{
		RunID:       run.ID.String(),
		Pipeline:    run.Pipeline,
		Status:      string(run.Status),
		SubmittedAt: run.SubmittedAt,
		Links:       runLink(run),
	}
}

func mapRunToGetResponse(run *storage.Run) GetRunResponse {
	resp := GetRunResponse{
		RunID:    run.ID.String(),
		Pipeline: run.Pipeline,
		Status:   string(run.Status),
		Nodes:    run.Nodes,
		Progress: ProgressInfo{
			Total:     run.Total,
			Completed: run.Done,
		},
		Outputs: run.Outputs,
		Timestamps: TimestampsInfo{
			Submitted: run.SubmittedAt,
			Started:   run.StartedAt,
			Completed: run.CompletedAt,
		},
		Error: run.Error,
	}
	if resp.Nodes == nil {
		resp.Nodes = []string{}
	}
	if resp.Outputs == nil {
		resp.Outputs = []string{}
	}
	return resp
}

func mapRunToSummary(run *storage.Run) RunSummary {
	return RunSummary{
		RunID:       run.ID.String(),
		Pipeline:    run.Pipeline,
		Status:      string(run.Status),
		SubmittedAt: run.SubmittedAt,
		CompletedAt: run.CompletedAt,
	}
}

func mapPipelines(infos []project.PipelineInfo) ListPipelinesResponse {
	resp := ListPipelinesResponse{Pipelines: make([]PipelineSummary, 0, len(infos))}
	for _, info := range infos {
		resp.Pipelines = append(resp.Pipelines, PipelineSummary{
			Name:   info.Name,
			Nodes:  info.Nodes,
			Inputs: info.Inputs,
		})
	}
	return resp
}
