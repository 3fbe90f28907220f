// Package actions implements the connector's host-invocable actions. Each
// action obtains a fresh API token, performs its remote calls and reports
// structured results on the session's action result.
package actions

import (
	"context"
	"fmt"

	"github.com/soarlink/trustar-connector/internal/host"
	"github.com/soarlink/trustar-connector/internal/trustar"
)

// Action is the closed set of operations the connector supports.
type Action int

const (
	ActionTestConnectivity Action = iota
	ActionHuntIP
	ActionHuntURL
	ActionHuntDomain
	ActionHuntFile
	ActionHuntEmail
	ActionHuntCVE
	ActionHuntMalware
	ActionHuntRegistryKey
	ActionGetReport
	ActionSubmitReport
	ActionOnPoll
)

func (a Action) String() string {
	switch a {
	case ActionTestConnectivity:
		return "test_asset_connectivity"
	case ActionHuntIP:
		return "hunt_ip"
	case ActionHuntURL:
		return "hunt_url"
	case ActionHuntDomain:
		return "hunt_domain"
	case ActionHuntFile:
		return "hunt_file"
	case ActionHuntEmail:
		return "hunt_email"
	case ActionHuntCVE:
		return "hunt_cve_number"
	case ActionHuntMalware:
		return "hunt_malware"
	case ActionHuntRegistryKey:
		return "hunt_registry_key"
	case ActionGetReport:
		return "get_report"
	case ActionSubmitReport:
		return "submit_report"
	case ActionOnPoll:
		return "on_poll"
	}
	return "unknown"
}

// Session carries everything one action invocation needs: the API client
// holding credentials and the per-action token, the result being built, and
// the host collaborators. The host persists state across invocations; the
// session itself never outlives one action.
type Session struct {
	Client    *trustar.Client
	Result    *host.ActionResult
	States    host.StateStore
	Artifacts host.ArtifactWriter
	Logger    *host.Logger

	// ValidateIP is the registered validator capability for IP parameters.
	ValidateIP func(string) bool
}

// Request selects the action and carries its parameters. Exactly the fields
// for the chosen action are consulted.
type Request struct {
	Action   Action
	IOC      string        // hunt_* actions
	ReportID string        // get_report
	Submit   *SubmitParams // submit_report
	Poll     *PollParams   // on_poll
}

// Dispatch runs one action against the session. The failure is recorded on
// the session result and also returned.
func Dispatch(ctx context.Context, s *Session, req Request) error {
	var err error
	switch req.Action {
	case ActionTestConnectivity:
		err = TestConnectivity(ctx, s)
	case ActionHuntIP:
		err = HuntIP(ctx, s, req.IOC)
	case ActionHuntURL:
		err = HuntURL(ctx, s, req.IOC)
	case ActionHuntDomain:
		err = HuntDomain(ctx, s, req.IOC)
	case ActionHuntFile:
		err = HuntFile(ctx, s, req.IOC)
	case ActionHuntEmail:
		err = HuntEmail(ctx, s, req.IOC)
	case ActionHuntCVE:
		err = HuntCVE(ctx, s, req.IOC)
	case ActionHuntMalware:
		err = HuntMalware(ctx, s, req.IOC)
	case ActionHuntRegistryKey:
		err = HuntRegistryKey(ctx, s, req.IOC)
	case ActionGetReport:
		err = GetReport(ctx, s, req.ReportID)
	case ActionSubmitReport:
		if req.Submit == nil {
			err = trustar.NewValidationError("submit_report parameters are required")
		} else {
			err = SubmitReport(ctx, s, *req.Submit)
		}
	case ActionOnPoll:
		if req.Poll == nil {
			err = trustar.NewValidationError("on_poll parameters are required")
		} else {
			err = OnPoll(ctx, s, *req.Poll)
		}
	default:
		err = fmt.Errorf("action %d is not supported", int(req.Action))
	}
	return err
}

func invalidParam(name, value string) error {
	return trustar.NewValidationError(fmt.Sprintf("invalid %s parameter: %s", name, value))
}
