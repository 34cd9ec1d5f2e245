package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
	"github.com/example/storefront/internal/verification"
)

// VerificationHandler proxies the phone verification handshake to the backend.
type VerificationHandler struct {
	verifier verification.Verifier
	cfg      *config.Config
	logger   *zap.Logger
}

// NewVerificationHandler constructs a VerificationHandler.
func NewVerificationHandler(verifier verification.Verifier, cfg *config.Config, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{verifier: verifier, cfg: cfg, logger: logger}
}

// SendCode validates the phone and asks the backend to text a code to it.
func (h *VerificationHandler) SendCode(c *fiber.Ctx) error {
	var req verification.SendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, "send-code", verification.ErrMissingPhone)
	}

	phone, err := verification.ValidatePhone(req.Telefono)
	if err != nil {
		return h.fail(c, "send-code", err)
	}

	res, err := h.verifier.SendCode(c.UserContext(), phone)
	if err != nil {
		return h.fail(c, "send-code", err)
	}

	return c.JSON(res)
}

// VerifyCode validates phone and code and forwards them to the backend.
// A verified answer without a backend session gets a locally signed one.
func (h *VerificationHandler) VerifyCode(c *fiber.Ctx) error {
	var req verification.VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, "verify-code", verification.ErrMissingFields)
	}
	if req.Telefono == "" || req.Codigo == "" {
		return h.fail(c, "verify-code", verification.ErrMissingFields)
	}

	if err := verification.ValidateCode(req.Codigo); err != nil {
		return h.fail(c, "verify-code", err)
	}
	phone, err := verification.ValidatePhone(req.Telefono)
	if err != nil {
		return h.fail(c, "verify-code", err)
	}

	res, err := h.verifier.VerifyCode(c.UserContext(), phone, req.Codigo)
	if err != nil {
		return h.fail(c, "verify-code", err)
	}

	out := *res
	if !out.Verified {
		out.Session = nil
		return c.JSON(out)
	}

	if out.Session == nil {
		session, err := h.issueSession(phone, out.PhoneNumber)
		if err != nil {
			h.logger.Error("issue session", zap.Error(err))
			return h.fail(c, "verify-code", verification.Transport(err))
		}
		out.Session = session
	}

	return c.JSON(out)
}

func (h *VerificationHandler) issueSession(phone, echoed string) (*verification.Session, error) {
	userID := echoed
	if userID == "" {
		userID = phone
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, userID, h.cfg.DefaultPlanID, "", h.cfg.TokenExpires)
	if err != nil {
		return nil, err
	}

	return &verification.Session{
		Token:  token,
		UserID: models.ID(userID),
		PlanID: models.ID(h.cfg.DefaultPlanID),
	}, nil
}

// fail writes the error body for err. Backend rejections keep their status
// and details; anything unexpected becomes a generic 500.
func (h *VerificationHandler) fail(c *fiber.Ctx, op string, err error) error {
	var verr *verification.Error
	if !errors.As(err, &verr) || verr.Kind == verification.KindTransport {
		h.logger.Error("verification proxy failed", zap.String("op", op), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(verification.ErrorResponse{
			Error: verification.GenericErrorMessage,
		})
	}

	if verr.Kind == verification.KindBackendRejected {
		h.logger.Info("backend rejected verification request",
			zap.String("op", op),
			zap.Int("status", verr.Status),
			zap.String("error", verr.Message))
	}

	return c.Status(verr.Status).JSON(verification.ErrorResponse{
		Error:   verr.Message,
		Details: verr.Details,
	})
}
