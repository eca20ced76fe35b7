package server

import (
	"bytes"
	"net/http"
	"time"

	"codeberg.org/mutker/motortemp/internal/logger"
	"codeberg.org/mutker/motortemp/internal/marker"
	"codeberg.org/mutker/motortemp/internal/telemetry"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type ingestResponse struct {
	telemetry.Result
	Errors []string `json:"errors,omitempty"`
}

type motorView struct {
	Name           string        `json:"motor_name"`
	Link           string        `json:"link_to_show"`
	MinTemperature float64       `json:"min_temperature"`
	MaxTemperature float64       `json:"max_temperature"`
	Normalized     float64       `json:"normalized_temperature"`
	Temperature    *float64      `json:"temperature,omitempty"`
	UpdatedAt      *time.Time    `json:"updated_at,omitempty"`
	Shape          marker.Marker `json:"shape"`
	Text           marker.Marker `json:"text"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"motors":      len(s.state.Snapshot()),
		"subscribers": s.hub.Len(),
	})
}

func (s *Server) postDiagnostics(c echo.Context) error {
	report, err := telemetry.DecodeReport(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	resp := s.handleReport(c, report)
	if len(resp.Errors) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}
	return c.JSON(http.StatusAccepted, resp)
}

func (s *Server) handleReport(c echo.Context, report telemetry.Report) ingestResponse {
	res, err := s.ingest.OnReport(c.Request().Context(), report)
	resp := ingestResponse{Result: res}
	if err != nil {
		resp.Errors = splitErrors(err)
	}
	return resp
}

// diagnosticsStream reads one report per text frame and acknowledges each.
func (s *Server) diagnosticsStream(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Diagnostics stream upgrade failed")
		return nil
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	remote := c.RealIP()
	logger.Info().Str("remote", remote).Msg("Diagnostics stream connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Str("remote", remote).Msg("Diagnostics stream closed unexpectedly")
			}
			logger.Info().Str("remote", remote).Msg("Diagnostics stream disconnected")
			return nil
		}

		var resp ingestResponse
		report, err := telemetry.DecodeReport(bytes.NewReader(data))
		if err != nil {
			resp.Errors = []string{err.Error()}
		} else {
			resp = s.handleReport(c, report)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn().Err(err).Str("remote", remote).Msg("Failed to acknowledge diagnostics report")
			return nil
		}
	}
}

func (s *Server) latestMarkers(c echo.Context) error {
	batch, ok := s.hub.Latest()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, batch)
}

// markersStream pushes every published batch to the client.
func (s *Server) markersStream(c echo.Context) error {
	sub, err := s.hub.Subscribe()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": err.Error()})
	}
	defer s.hub.Unsubscribe(sub.ID)

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Marker stream upgrade failed")
		return nil
	}
	defer conn.Close()

	// Incoming frames are discarded; reading is needed to notice the close.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case batch := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := conn.WriteJSON(batch); err != nil {
				logger.Debug().Err(err).Str("subscriber", sub.ID).Msg("Marker stream write failed")
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
				return nil
			}
		case <-sub.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(s.cfg.WriteWait))
			return nil
		case <-readerDone:
			return nil
		}
	}
}

func (s *Server) motors(c echo.Context) error {
	entries := s.state.Snapshot()
	out := make([]motorView, 0, len(entries))
	for _, e := range entries {
		v := motorView{
			Name:           e.Name,
			Link:           e.Link,
			MinTemperature: e.MinTemperature,
			MaxTemperature: e.MaxTemperature,
			Normalized:     e.Normalized,
			Shape:          e.Shape,
			Text:           e.Text,
		}
		if e.HasReading {
			temperature, updated := e.Temperature, e.UpdatedAt
			v.Temperature = &temperature
			v.UpdatedAt = &updated
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
