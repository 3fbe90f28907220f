package actions

import (
	"context"
	"time"
)

const (
	msgConnectionTest = "Querying endpoint to verify the credentials provided"
	msgTestPass       = "Test connectivity passed"
	msgTestFail       = "Test connectivity failed"
)

// connectivityTimeout bounds the token call during the connectivity test.
// Other actions rely on the client default.
const connectivityTimeout = 30 * time.Second

// TestConnectivity verifies the configured credentials by generating a token.
func TestConnectivity(ctx context.Context, s *Session) error {
	s.Logger.SaveProgress(msgConnectionTest)
	s.Logger.SaveProgress("Configured URL: %s", s.Client.BaseURL())

	if err := s.Client.GenerateToken(ctx, connectivityTimeout); err != nil {
		s.Logger.SaveProgress("%s", err.Error())
		s.Result.SetStatus("failed", msgTestFail)
		return err
	}

	s.Logger.SaveProgress(msgTestPass)
	s.Result.SetStatus("success", msgTestPass)
	return nil
}
