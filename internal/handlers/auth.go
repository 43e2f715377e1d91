package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minchat/auth_service/internal/gravatar"
	"github.com/minchat/auth_service/internal/hash"
	"github.com/minchat/auth_service/internal/logging"
	authmw "github.com/minchat/auth_service/internal/middleware/auth"
	"github.com/minchat/auth_service/internal/models"
	"github.com/minchat/auth_service/internal/mykafka"
	"github.com/minchat/auth_service/internal/tokens"
	"github.com/minchat/auth_service/internal/validate"
)

type AuthHandler struct {
	DB            *gorm.DB
	AccessSecret  []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

type userResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Picture: u.Picture}
}

var signupSchema = validate.Schema{
	"id":       validate.ID,
	"password": validate.MinLen(5),
	"name":     validate.NonEmpty,
}

var checkIDSchema = validate.Schema{
	"id": validate.ID,
}

// sendError hides store/crypto failures behind a generic body; the detail
// only goes to the server log under an operation tag.
func sendError(c echo.Context, tag string, err error) error {
	logging.FromContext(c.Request().Context()).Error(tag, "error", err)

	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
}

func (h *AuthHandler) publishEvent(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, mykafka.UserEventsTopic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req struct {
		ID       string `json:"id"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Picture  string `json:"picture"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
	}

	ok := signupSchema.Validate(map[string]string{
		"id":       req.ID,
		"password": req.Password,
		"name":     req.Name,
	})
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
	}

	var count int64
	if err := h.DB.WithContext(c.Request().Context()).Model(&models.User{}).
		Where("id = ?", req.ID).Count(&count).Error; err != nil {
		return sendError(c, "postSignup error", err)
	}
	if count > 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Account with that id address already exists."})
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return sendError(c, "postSignup error", err)
	}

	picture := req.Picture
	if picture == "" {
		picture = gravatar.URL(req.ID)
	}

	user := models.User{
		ID:           req.ID,
		PasswordHash: pwHash,
		Name:         req.Name,
		Picture:      picture,
		Chats:        []string{},
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
		return sendError(c, "postSignup error", err)
	}

	h.publishEvent(c, user.ID, map[string]interface{}{
		"type": "user_created",
		"id":   user.ID,
		"name": user.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "User created"})
}

func (h *AuthHandler) CheckID(c echo.Context) error {
	var req struct {
		ID string `json:"id"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid request"})
	}

	if !checkIDSchema.Validate(map[string]string{"id": req.ID}) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid request"})
	}

	var count int64
	if err := h.DB.WithContext(c.Request().Context()).Model(&models.User{}).
		Where("id = ?", req.ID).Count(&count).Error; err != nil {
		return sendError(c, "postCheckDuplicatedId error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"isDuplicated": count > 0})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", req.ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid id"})
		}
		return sendError(c, "postLogin error", err)
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid password"})
	}

	accessToken, err := tokens.SignAccessToken(user.ID, h.AccessSecret)
	if err != nil {
		return sendError(c, "postLogin error", err)
	}

	refreshToken, err := tokens.SignRefreshToken(user.ID, h.RefreshSecret)
	if err != nil {
		return sendError(c, "postLogin error", err)
	}

	if err := h.storeRefreshToken(c.Request().Context(), user.ID, refreshToken); err != nil {
		return sendError(c, "postLogin error", err)
	}

	h.publishEvent(c, user.ID, map[string]interface{}{
		"type": "user_logged_in",
		"id":   user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// storeRefreshToken overwrites any prior row for the user; concurrent logins
// are last-writer-wins.
func (h *AuthHandler) storeRefreshToken(ctx context.Context, userID, token string) error {
	expires := time.Now().Add(tokens.StoredRefreshTTL)

	var stored models.RefreshToken
	err := h.DB.WithContext(ctx).Where("user_id = ?", userID).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return h.DB.WithContext(ctx).Create(&models.RefreshToken{
			UserID:    userID,
			Token:     token,
			ExpiresAt: expires,
		}).Error
	}
	if err != nil {
		return err
	}

	stored.Token = token
	stored.ExpiresAt = expires
	return h.DB.WithContext(ctx).Save(&stored).Error
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Unauthorized"})
	}

	claims, err := tokens.ClaimsFromToken(req.RefreshToken, h.RefreshSecret)
	if err != nil || claims.Subject == "" {
		return c.String(http.StatusForbidden, "Unauthorized")
	}

	var stored models.RefreshToken
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", claims.Subject).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.String(http.StatusForbidden, "Unauthorized")
		}
		return sendError(c, "postRefresh error", err)
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.String(http.StatusForbidden, "Unauthorized")
		}
		return sendError(c, "postRefresh error", err)
	}

	accessToken, err := tokens.SignAccessToken(user.ID, h.AccessSecret)
	if err != nil {
		return sendError(c, "postRefresh error", err)
	}

	return c.String(http.StatusOK, accessToken)
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	id := c.QueryParam("userId")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Unauthorized"})
		}
		return sendError(c, "getUser error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": toUserResponse(&user)})
}

// Me only ever reports auth:true; the unauthorized auth:false body comes from
// the WithUser middleware in front of it.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := c.Get(authmw.UserKey).(*models.User)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"auth": false})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"auth": true,
		"user": toUserResponse(user),
	})
}

func (h *AuthHandler) PatchUser(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	if !validate.AnyOf(req.Name, req.Picture) {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	userID, _ := c.Get(authmw.UserIDKey).(string)

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.String(http.StatusForbidden, "Unauthorized")
		}
		return sendError(c, "patchUser error", err)
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Picture != "" {
		updates["picture"] = req.Picture
	}

	if err := h.DB.WithContext(c.Request().Context()).Model(&user).Updates(updates).Error; err != nil {
		return sendError(c, "patchUser error", err)
	}

	return c.String(http.StatusOK, "User updated")
}
