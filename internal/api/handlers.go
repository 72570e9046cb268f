package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"simple-push-service/internal/authtoken"
	"simple-push-service/internal/observability"
	"simple-push-service/internal/queue"
	"simple-push-service/internal/store"
	"simple-push-service/internal/walletauth"
)

// Handlers wires the three C6 endpoints plus the supplemented messages
// listing, following the teacher's Handlers-struct pattern
// (internal/api/handlers.go) with domain logic replaced.
type Handlers struct {
	logger     *zap.Logger
	users      *store.UserRepo
	transports *store.TransportRepo
	messages   *store.MessageRepo
	tokens     *store.TokenRepo
	enqueuer   *store.Enqueuer
	queue      *queue.DelayQueue
	codec      *authtoken.Codec
	metrics    *observability.Metrics
}

func NewHandlers(
	logger *zap.Logger,
	users *store.UserRepo,
	transports *store.TransportRepo,
	messages *store.MessageRepo,
	tokens *store.TokenRepo,
	enqueuer *store.Enqueuer,
	q *queue.DelayQueue,
	codec *authtoken.Codec,
	metrics *observability.Metrics,
) *Handlers {
	return &Handlers{
		logger:     logger,
		users:      users,
		transports: transports,
		messages:   messages,
		tokens:     tokens,
		enqueuer:   enqueuer,
		queue:      q,
		codec:      codec,
		metrics:    metrics,
	}
}

type authRequest struct {
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

// Auth handles POST /api/auth (spec.md §4.6).
func (h *Handlers) Auth(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Address == "" || req.Timestamp == 0 || req.Signature == "" {
		return fail(c, fiber.StatusBadRequest, "address, timestamp and signature are required")
	}

	sig, err := decodeSignature(req.Signature)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "signature must be hex-encoded")
	}

	message := walletauth.Message(strconv.FormatInt(req.Timestamp, 10))
	if err := walletauth.Verify(req.Address, message, sig); err != nil {
		return fail(c, fiber.StatusBadRequest, "signature verification failed")
	}

	user, err := h.users.FindOrCreateByWalletAddress(c.Context(), req.Address)
	if err != nil {
		h.logger.Error("find or create user failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	accessToken, err := h.codec.Issue(time.Now(), user.WalletAddress)
	if err != nil {
		h.logger.Error("issue token failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	if err := h.tokens.Insert(c.Context(), &store.Token{UserID: user.ID, AccessToken: accessToken}); err != nil {
		h.logger.Error("persist token failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	return ok(c, fiber.Map{"access_token": accessToken})
}

type transportView struct {
	Type      store.TransportType `json:"type"`
	ChatID    *string             `json:"chat_id,omitempty"`
	Connected bool                `json:"connected"`
}

// GetMe handles GET /api/get_me (spec.md §4.6): requires a valid bearer
// token, resolved to the caller's wallet address by RequireBearerToken.
func (h *Handlers) GetMe(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*authtoken.Claims)

	user, err := h.users.FindByWalletAddress(c.Context(), claims.Username)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "user not found")
	}

	transports, err := h.transports.FindAllByUserID(c.Context(), user.ID)
	if err != nil {
		h.logger.Error("load transports failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	views := make([]transportView, 0, len(transports))
	for _, t := range transports {
		views = append(views, transportView{Type: t.Type, ChatID: t.ChatID, Connected: t.Connected})
	}

	return ok(c, fiber.Map{
		"id":         user.ID,
		"open_id":    user.OpenID,
		"project_id": user.ProjectID,
		"transports": views,
	})
}

type pushRequest struct {
	Title   string `json:"title" query:"title"`
	Content string `json:"content" query:"content"`
}

// Push handles GET|POST /api/push/:project_id (spec.md §4.6). No
// authentication beyond knowledge of project_id.
func (h *Handlers) Push(c *fiber.Ctx) error {
	projectID := c.Params("project_id")

	var req pushRequest
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
	} else {
		if err := c.QueryParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid query parameters")
		}
	}
	if req.Content == "" {
		return fail(c, fiber.StatusBadRequest, "content is required")
	}

	user, err := h.users.FindByProjectID(c.Context(), projectID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "unknown project_id")
	}

	deliverable, err := h.transports.FindDeliverableByUserID(c.Context(), user.ID)
	if err != nil {
		h.logger.Error("load deliverable transports failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	_, taskIDs, err := h.enqueuer.EnqueueMessage(c.Context(), user.ID, req.Title, req.Content, deliverable)
	if err != nil {
		h.logger.Error("enqueue message failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	now := time.Now().Unix()
	entries := make([]queue.Entry, len(taskIDs))
	for i, id := range taskIDs {
		entries[i] = queue.Entry{ID: id, FireAt: now}
	}
	if err := h.queue.AddMany(c.Context(), entries); err != nil {
		h.logger.Error("enqueue to delay queue failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}
	h.metrics.TasksEnqueuedTotal.Add(float64(len(taskIDs)))

	return ok(c, fiber.Map{"status": "queued"})
}

// ListMessages handles the supplemented GET /api/messages?project_id=...
// endpoint, grounded on original_source's find_all_by_user_id.
func (h *Handlers) ListMessages(c *fiber.Ctx) error {
	projectID := c.Query("project_id")
	if projectID == "" {
		return fail(c, fiber.StatusBadRequest, "project_id is required")
	}

	user, err := h.users.FindByProjectID(c.Context(), projectID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "unknown project_id")
	}

	msgs, err := h.messages.FindAllByUserID(c.Context(), user.ID, 50, 0)
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}

	return ok(c, msgs)
}

// Health handles GET /healthz: a liveness probe with no dependency checks.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return ok(c, fiber.Map{"status": "ok"})
}
