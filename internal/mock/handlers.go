package mock

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sadopc/apitrack/internal/tracker"
)

// endpointInput is the create/update body. Pointer fields distinguish
// "absent" from "empty" for partial updates.
type endpointInput struct {
	Endpoint *string           `json:"endpoint"`
	Method   *string           `json:"method"`
	Headers  map[string]string `json:"headers"`
	Params   map[string]string `json:"params"`
	Body     *string           `json:"body"`
}

func fieldError(c *fiber.Ctx, field, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{field: []string{msg}})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found."})
}

func (s *Server) login(c *fiber.Ctx) error {
	var in struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid login request."})
	}
	if strings.TrimSpace(in.Username) == "" {
		return fieldError(c, "username", "This field is required.")
	}
	if in.Password == "" {
		return fieldError(c, "password", "This field is required.")
	}
	token, err := s.auth.Login(in.Username, in.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		s.logger.Warn("login rejected", "username", in.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) listEndpoints(c *fiber.Ctx) error {
	f := Filter{
		SearchTerm: c.Query("search_term"),
		Method:     c.Query("method"),
		Status:     c.Query("status"),
		Code:       c.Query("code"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 10),
	}
	if f.Method != "" {
		m, err := tracker.ParseMethod(f.Method)
		if err != nil {
			return fieldError(c, "method", tracker.MsgMethodInvalid)
		}
		f.Method = string(m)
	}
	if f.Code != "" {
		if _, err := strconv.Atoi(f.Code); err != nil {
			return fieldError(c, "code", "Code must be a number.")
		}
	}
	items, total, err := s.store.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items, "total": total})
}

func (s *Server) createEndpoint(c *fiber.Ctx) error {
	var in endpointInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON body."})
	}
	if in.Endpoint == nil || strings.TrimSpace(*in.Endpoint) == "" {
		return fieldError(c, "endpoint", tracker.MsgEndpointRequired)
	}
	method := tracker.MethodGET
	if in.Method != nil {
		m, err := tracker.ParseMethod(*in.Method)
		if err != nil {
			return fieldError(c, "method", tracker.MsgMethodInvalid)
		}
		method = m
	}
	p := tracker.Payload{
		Endpoint: strings.TrimSpace(*in.Endpoint),
		Method:   method,
		Headers:  in.Headers,
		Params:   in.Params,
	}
	if in.Body != nil {
		p.Body = *in.Body
	}
	e, err := s.store.Create(c.UserContext(), p)
	if err != nil {
		return err
	}
	s.logger.Info("endpoint created", "id", e.ID, "endpoint", e.Endpoint)
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (s *Server) getEndpoint(c *fiber.Ctx) error {
	e, err := s.store.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) updateEndpoint(c *fiber.Ctx) error {
	var in endpointInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON body."})
	}
	var patch Patch
	if in.Endpoint != nil {
		ep := strings.TrimSpace(*in.Endpoint)
		if ep == "" {
			return fieldError(c, "endpoint", tracker.MsgEndpointRequired)
		}
		patch.Endpoint = &ep
	}
	if in.Method != nil {
		m, err := tracker.ParseMethod(*in.Method)
		if err != nil {
			return fieldError(c, "method", tracker.MsgMethodInvalid)
		}
		patch.Method = &m
	}
	patch.Headers, patch.Params, patch.Body = in.Headers, in.Params, in.Body

	e, err := s.store.Update(c.UserContext(), c.Params("id"), patch)
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) deleteEndpoint(c *fiber.Ctx) error {
	err := s.store.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	s.logger.Info("endpoint deleted", "id", c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) callLogs(c *fiber.Ctx) error {
	logs, total, err := s.store.Logs(c.UserContext(), c.Params("id"), c.QueryInt("page", 1), c.QueryInt("page_size", 10))
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"call_logs": logs, "total_logs": total})
}

// hitEndpoint calls the tracked endpoint and records the outcome. The
// response is 200 whatever the target answered.
func (s *Server) hitEndpoint(c *fiber.Ctx) error {
	ctx := c.UserContext()
	e, err := s.store.Get(ctx, c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	p := s.prober.Probe(probeCtx, e)
	cancel()
	s.metrics.ObserveProbe(p)
	if p.Err != nil {
		s.logger.Warn("probe failed", "id", e.ID, "endpoint", e.Endpoint, "error", p.Err)
	}

	updated, err := s.store.RecordCall(ctx, e.ID, p.Code, p.Seconds())
	if err != nil {
		return err
	}
	s.logger.Info("endpoint hit", "id", e.ID, "code", updated.CodeLabel(), "seconds", p.Seconds())
	return c.JSON(updated)
}

func (s *Server) loadTest(c *fiber.Ctx) error {
	users := c.QueryInt("numUsers", 0)
	duration := c.QueryInt("duration", 0)
	if users <= 0 {
		return fieldError(c, "numUsers", "Number of users must be greater than zero.")
	}
	if users > s.cfg.MaxLoadTestUsers {
		return fieldError(c, "numUsers", "Number of users must be at most "+strconv.Itoa(s.cfg.MaxLoadTestUsers)+".")
	}
	if duration <= 0 {
		return fieldError(c, "duration", "Duration must be greater than zero.")
	}

	ctx := c.UserContext()
	e, err := s.store.Get(ctx, c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}

	window := min(time.Duration(duration)*s.cfg.LoadTestUnit, s.cfg.MaxLoadTestDuration)
	s.logger.Info("load test started", "id", e.ID, "users", users, "window", window)
	res := RunLoadTest(ctx, func(ctx context.Context) Probe {
		p := s.prober.Probe(ctx, e)
		if p.Code != nil || ctx.Err() == nil {
			s.metrics.ObserveProbe(p)
		}
		return p
	}, users, window)
	res.Duration = duration
	s.metrics.LoadTestsTotal.Inc()
	s.logger.Info("load test finished", "id", e.ID, "groups", len(res.Responses), "avg", res.AvgResponseTime)
	return c.JSON(res)
}
