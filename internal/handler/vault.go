package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/altinm/password-vault/internal/config"
	"github.com/altinm/password-vault/internal/crypto"
	"github.com/altinm/password-vault/internal/queue"
	"github.com/altinm/password-vault/internal/repository"
	publisher "github.com/altinm/password-vault/internal/service"
)

const maxFieldLen = 50

// VaultHandler owns the lifecycle of encrypted credential entries. Every
// operation is scoped to the authenticated owner injected by the auth gate;
// the encryption key comes from config at construction time and is never
// refetched.
type VaultHandler struct {
	Cfg     config.Config
	Entries *repository.EntryRepo

	// publishAudit is swappable for tests; defaults to the RabbitMQ
	// publisher.
	publishAudit func(context.Context, queue.VaultAuditEvent) error
}

func NewVaultHandler(cfg config.Config, e *repository.EntryRepo) *VaultHandler {
	return &VaultHandler{Cfg: cfg, Entries: e, publishAudit: publisher.PublishVaultAudit}
}

// ----- DTOs -----

type saveReq struct {
	Label    string `json:"label"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateReq struct {
	Password string `json:"password"`
}

type entryMeta struct {
	ID        uint64    `json:"id"`
	Label     string    `json:"label"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toMeta(e *repository.Entry) entryMeta {
	return entryMeta{
		ID:        e.ID,
		Label:     e.Label,
		Username:  e.Username,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (h *VaultHandler) audit(action string, e *repository.Entry) {
	if h.publishAudit == nil {
		return
	}
	ev := queue.VaultAuditEvent{
		Action:   action,
		UserID:   e.OwnerID,
		EntryID:  e.ID,
		Label:    e.Label,
		Username: e.Username,
		At:       time.Now().UTC().Format(time.RFC3339),
	}
	// Fire and forget: the broker must never slow down or fail a request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.publishAudit(ctx, ev)
	}()
}

// Save handles POST /password/save. The plaintext exists only on the stack
// of this request: it is encrypted before the store is touched.
func (h *VaultHandler) Save(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req saveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	label := strings.TrimSpace(req.Label)
	username := strings.TrimSpace(req.Username)
	if label == "" || username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "label, username and password are required"})
	}
	// Limits count characters, not bytes: a 30-letter Cyrillic label is
	// within bounds even though it is 60 bytes of UTF-8.
	if utf8.RuneCountInString(label) > maxFieldLen || utf8.RuneCountInString(username) > maxFieldLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "label and username must be at most 50 characters"})
	}
	if utf8.RuneCountInString(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	enc, err := crypto.Encrypt(req.Password, h.Cfg.VaultKey)
	if err != nil {
		log.Printf("vault: encrypt failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry := &repository.Entry{
		OwnerID:    ownerID,
		Label:      label,
		Username:   username,
		EncIV:      enc.IV,
		EncContent: enc.Content,
		EncTag:     enc.Tag,
	}
	if err := h.Entries.Create(ctx, entry); err != nil {
		if err == repository.ErrDuplicateEntry {
			return c.JSON(http.StatusConflict, echo.Map{"error": "an entry with this label + username already exists"})
		}
		return c.JSON(storeErrStatus(err), echo.Map{"error": "could not save entry"})
	}
	h.audit("save", entry)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":        entry.ID,
		"label":     entry.Label,
		"username":  entry.Username,
		"createdAt": entry.CreatedAt,
	})
}

// List handles GET /passwords: metadata only, newest first. Secrets never
// appear in listings, encrypted or not.
func (h *VaultHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Entries.ListByOwner(ctx, ownerID)
	if err != nil {
		return c.JSON(storeErrStatus(err), echo.Map{"error": "could not list entries"})
	}

	items := make([]entryMeta, 0, len(entries))
	for _, e := range entries {
		items = append(items, toMeta(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(items), "items": items})
}

// GetOne handles GET /passwords/:id and is the only place a stored secret
// is decrypted. Nothing is cached: every reveal re-fetches and re-decrypts.
func (h *VaultHandler) GetOne(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if err == repository.ErrEntryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(storeErrStatus(err), echo.Map{"error": "could not load entry"})
	}

	plain, err := crypto.Decrypt(crypto.Payload{
		IV:      entry.EncIV,
		Content: entry.EncContent,
		Tag:     entry.EncTag,
	}, h.Cfg.VaultKey)
	if err != nil {
		// Integrity failure means corrupted data or a key mismatch. The
		// detail stays in the server log; the client gets a generic error.
		log.Printf("vault: decrypt failed for entry %d: %v", entry.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":        entry.ID,
		"label":     entry.Label,
		"username":  entry.Username,
		"password":  plain,
		"createdAt": entry.CreatedAt,
		"updatedAt": entry.UpdatedAt,
	})
}

// Update handles PUT /passwords/:id: the secret payload is fully replaced
// with a fresh IV, ciphertext and tag.
func (h *VaultHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}
	if utf8.RuneCountInString(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	enc, err := crypto.Encrypt(req.Password, h.Cfg.VaultKey)
	if err != nil {
		log.Printf("vault: encrypt failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Entries.UpdateSecret(ctx, id, ownerID, enc.IV, enc.Content, enc.Tag); err != nil {
		if err == repository.ErrEntryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(storeErrStatus(err), echo.Map{"error": "could not update entry"})
	}

	entry, err := h.Entries.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return c.JSON(storeErrStatus(err), echo.Map{"error": "could not load entry"})
	}
	h.audit("replace", entry)

	return c.JSON(http.StatusOK, echo.Map{"item": toMeta(entry)})
}

// Delete handles DELETE /passwords/:id.
func (h *VaultHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.DeleteByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if err == repository.ErrEntryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(storeErrStatus(err), echo.Map{"error": "could not delete entry"})
	}
	h.audit("delete", entry)

	return c.JSON(http.StatusOK, echo.Map{"item": toMeta(entry)})
}
