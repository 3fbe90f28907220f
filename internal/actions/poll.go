package actions

import (
	"context"
	"math"

	"github.com/soarlink/trustar-connector/internal/artifact"
	"github.com/soarlink/trustar-connector/internal/trustar"
)

// PollParams are the parameters of the on_poll action. StartTime and EndTime
// are epoch milliseconds supplied by the host scheduler; PollNow marks an
// ad-hoc, on-demand ingestion.
type PollParams struct {
	StartTime int64
	EndTime   int64
	PollNow   bool
}

// OnPoll ingests the latest indicators shared on the Station as one container
// of artifacts. Ad-hoc polls and the first-ever scheduled run fetch without an
// interval filter; later scheduled runs pass the window size in hours.
func OnPoll(ctx context.Context, s *Session, p PollParams) error {
	if err := s.Client.GenerateToken(ctx, 0); err != nil {
		s.Result.Fail(err)
		return err
	}

	s.Logger.SaveProgress("Fetching latest IOCs")

	intervalSize := 0
	if p.PollNow {
		s.Logger.SaveProgress("Ignoring Source ID")
		s.Logger.SaveProgress("Ignoring Maximum containers and Maximum artifacts count")
	} else {
		state, err := s.States.Load(ctx)
		if err != nil {
			s.Result.Fail(err)
			return err
		}
		if state.FirstRunPending() {
			state.MarkFirstRunDone()
			if err := s.States.Save(ctx, state); err != nil {
				s.Result.Fail(err)
				return err
			}
		} else {
			// Window size in hours, rounded up.
			diffSeconds := float64(p.EndTime-p.StartTime) / 1000.0
			intervalSize = int(math.Ceil(diffSeconds / 3600.0))
		}
	}

	latest, err := s.Client.LatestIndicators(ctx, intervalSize)
	if err != nil {
		s.Result.Fail(err)
		return err
	}

	if total := latest.TotalIndicators(); total > 0 {
		if err := s.ingest(ctx, latest, total); err != nil {
			s.Result.Fail(err)
			return err
		}
	}

	s.Result.SetStatus("success", "")
	return nil
}

// ingest saves the batch container and one artifact per indicator value. A
// container failure aborts the batch; a failed artifact is logged and skipped
// so one bad artifact does not lose the rest.
func (s *Session) ingest(ctx context.Context, latest *trustar.LatestIndicators, total int) error {
	containerSpec := artifact.MapContainer(latest)
	containerID, err := s.Artifacts.SaveContainer(ctx, containerSpec)
	if err != nil {
		s.Logger.SaveProgress("Error while creating container")
		s.Logger.DebugPrint("Error while creating container %s: %v", containerSpec.Name, err)
		return err
	}

	ingested := 0
	for _, spec := range artifact.MapArtifacts(latest, containerID, total) {
		if _, err := s.Artifacts.SaveArtifact(ctx, spec); err != nil {
			s.Logger.DebugPrint("Error while creating %s: %v", spec.Name, err)
			continue
		}
		ingested++
	}

	s.Result.SetSummary("container_id", containerID)
	s.Result.SetSummary("artifacts_ingested", ingested)
	return nil
}
