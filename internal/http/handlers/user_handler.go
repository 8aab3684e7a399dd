// README: User account handlers. Password hashes never leave the service.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carwash/internal/modules/user"
	"carwash/internal/types"
)

type UserService interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, cmd user.CreateCommand) (user.User, error)
	Update(ctx context.Context, cmd user.UpdateCommand) (user.User, error)
	Delete(ctx context.Context, id types.ID) error
}

type UserHandler struct {
	user UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{user: svc}
}

type userReq struct {
	Username string  `json:"username"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	Shift    *string `json:"shift"`
	Password string  `json:"password"`
}

func (r userReq) shift() string {
	if r.Shift == nil {
		return ""
	}
	return *r.Shift
}

type userResp struct {
	ID              types.ID  `json:"id"`
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	Role            user.Role `json:"role"`
	Shift           *string   `json:"shift"`
	PermissionLevel int       `json:"permission_level"`
	CreatedAt       time.Time `json:"created_at"`
}

func newUserResp(u user.User) userResp {
	out := userResp{
		ID:              u.ID,
		Username:        u.Username,
		FullName:        u.FullName,
		Role:            u.Role,
		PermissionLevel: u.Role.Level(),
		CreatedAt:       u.CreatedAt,
	}
	if u.Shift != "" {
		s := string(u.Shift)
		out.Shift = &s
	}
	return out
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.user.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResp(u))
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.user.Create(c.Request.Context(), user.CreateCommand{
		Username: req.Username,
		FullName: req.FullName,
		Role:     req.Role,
		Shift:    req.shift(),
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, newUserResp(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !types.IsValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	var req userReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.user.Update(c.Request.Context(), user.UpdateCommand{
		ID:       types.ID(id),
		Username: req.Username,
		FullName: req.FullName,
		Role:     req.Role,
		Shift:    req.shift(),
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newUserResp(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !types.IsValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.user.Delete(c.Request.Context(), types.ID(id)); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}
