package bot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/lark-dept-bot/internal/dedup"
	"github.com/yuya-takeyama/lark-dept-bot/internal/directory"
	"github.com/yuya-takeyama/lark-dept-bot/internal/lark"
	"github.com/yuya-takeyama/lark-dept-bot/internal/messages"
)

// Identity is the body returned to GET requests
const Identity = "Hello, Lark Department Bot!"

const maxBodyBytes = 1 << 20

// Handler handles Lark event callbacks
type Handler struct {
	tokens      TokenSource
	directory   DirectoryFetcher
	departments directory.DepartmentNamer
	dispatcher  *Dispatcher
	dedup       DuplicateChecker
	logger      zerolog.Logger
}

// Deps are the collaborators of a Handler
type Deps struct {
	Tokens      TokenSource
	Directory   DirectoryFetcher
	Departments directory.DepartmentNamer
	Sender      MessageSender
	Dedup       DuplicateChecker
	Logger      zerolog.Logger
}

// NewHandler creates a new event handler
func NewHandler(deps Deps) *Handler {
	return &Handler{
		tokens:      deps.Tokens,
		directory:   deps.Directory,
		departments: deps.Departments,
		dispatcher:  NewDispatcher(deps.Sender, deps.Logger),
		dedup:       deps.Dedup,
		logger:      deps.Logger.With().Str("component", "handler").Logger(),
	}
}

// HandleIdentity answers liveness probes on the callback URL
func (h *Handler) HandleIdentity(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, Identity)
}

// HandleEvent handles Lark event callbacks
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read request body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	callback, err := lark.ParseCallback(body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse callback")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// URL verification handshake
	if callback.IsChallenge() {
		h.logger.Info().Msg("Answering URL verification challenge")
		writeChallenge(w, callback.Challenge)
		return
	}

	logger := h.logger.With().
		Str("request_id", uuid.NewString()).
		Str("event_id", callback.Header.EventID).
		Logger()

	eventType := callback.EventType()
	if eventType != lark.EventTypeMessageReceive {
		logger.Debug().Str("event_type", eventType).Msg("Ignoring event")
		w.WriteHeader(http.StatusOK)
		return
	}

	event := callback.MessageEvent()
	chatID := event.Message.ChatID
	text := event.Message.Text()
	if text == "" {
		logger.Debug().Msg("Ignoring message without text")
		w.WriteHeader(http.StatusOK)
		return
	}
	if chatID == "" {
		logger.Warn().Msg("Ignoring message without chat_id")
		w.WriteHeader(http.StatusOK)
		return
	}

	logger = logger.With().Str("chat_id", chatID).Logger()

	// The platform may give up on this request and redeliver while we are
	// still working; the delivery is already recorded, so finish it.
	ctx := logger.WithContext(context.WithoutCancel(r.Context()))

	if h.dedup.IsDuplicate(ctx, dedup.Subject{EventID: callback.Header.EventID, ChatID: chatID, Text: text}) {
		w.WriteHeader(http.StatusOK)
		return
	}

	logger.Info().Str("text", text).Msg("Looking up user")
	h.answer(ctx, chatID, text)

	w.WriteHeader(http.StatusOK)
}

// answer runs the lookup for text and replies in the chat. Every path ends
// in at most one reply.
func (h *Handler) answer(ctx context.Context, chatID, text string) {
	logger := zerolog.Ctx(ctx)

	token, err := h.tokens.TenantAccessToken(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get tenant access token")
		// Without a token the send is expected to fail too; the attempt is
		// still made so the failure shows up in the platform's logs.
		h.dispatcher.Send(ctx, "", chatID, messages.AuthErrorMessage)
		return
	}

	users, err := h.directory.FetchAllUsers(ctx, token)
	if err != nil {
		logger.Error().
			Err(err).
			Bool("permission_error", lark.IsPermissionError(err)).
			Msg("Failed to fetch directory")
		h.dispatcher.Send(ctx, token, chatID, messages.LookupFailedMessage)
		return
	}
	if len(users) == 0 {
		logger.Warn().Msg("Directory is empty")
		h.dispatcher.Send(ctx, token, chatID, messages.EmptyDirectoryMessage)
		return
	}

	matches := directory.Resolve(text, users)
	logger.Info().Int("users", len(users)).Int("matches", len(matches)).Msg("Resolved query")

	if len(matches) == 0 {
		h.dispatcher.Send(ctx, token, chatID, messages.FormatNotFoundMessage(text))
		return
	}

	h.dispatcher.Send(ctx, token, chatID, messages.FormatCandidates(h.candidates(ctx, token, matches)))
}

// candidates resolves department names for the matches, looking each
// department up once
func (h *Handler) candidates(ctx context.Context, token string, matches []directory.Match) []messages.Candidate {
	names := make(map[string]string)
	candidates := make([]messages.Candidate, 0, len(matches))

	for _, m := range matches {
		c := messages.Candidate{Name: m.User.Name}
		if m.HasDepartment() {
			name, ok := names[m.DepartmentID]
			if !ok {
				name = h.departments.DepartmentName(ctx, token, m.DepartmentID)
				names[m.DepartmentID] = name
			}
			c.DepartmentName = name
			for _, member := range m.Roster {
				c.Members = append(c.Members, member.Name)
			}
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func writeChallenge(w http.ResponseWriter, challenge json.RawMessage) {
	payload, err := json.Marshal(struct {
		Challenge json.RawMessage `json:"challenge"`
	}{Challenge: challenge})
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
